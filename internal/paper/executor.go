package paper

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"paper-trader-go/internal/ledger"
	"paper-trader-go/internal/marketdata"
	"paper-trader-go/internal/models"

	"go.uber.org/zap"
)

// MarketData is the slice of the market-data router the trading core
// depends on. Price methods return marketdata.PriceUnavailable rather
// than an error when a market is closed or unreachable.
type MarketData interface {
	Route(assetID string) (string, marketdata.Source)
	Price(ctx context.Context, assetID string) float64
	SymbolPrice(ctx context.Context, symbol string) float64
}

// Executor validates and commits paper orders. It is the single writer of
// both the cached balance and the trade log; every mutation path,
// including automated execution, must go through Execute.
type Executor struct {
	logger *zap.Logger
	store  ledger.Store
	market MarketData

	// Per-user serialization of the read-validate-commit sequence.
	// Without it two concurrent orders for the same user could both pass
	// the solvency check before either write lands.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewExecutor creates a new order executor.
func NewExecutor(logger *zap.Logger, store ledger.Store, market MarketData) *Executor {
	return &Executor{
		logger: logger,
		store:  store,
		market: market,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (e *Executor) userLock(userID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	mu, ok := e.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[userID] = mu
	}
	return mu
}

// Execute runs one synchronous decide-and-commit order attempt.
//
// The quantity is normalized to its absolute value before anything else:
// a negative BUY would otherwise invert the economic effect of the order.
// Balance and holdings are re-derived from the trade log immediately
// before the commit, never taken from the cached profile value, so a
// stale cache can not fool the solvency check.
func (e *Executor) Execute(ctx context.Context, userID, credential, assetID string, side models.Side, quantity float64, note string) Result {
	l := e.logger.With(
		zap.String("user_id", userID),
		zap.String("asset_id", assetID),
		zap.String("side", string(side)),
		zap.Float64("quantity", quantity),
	)

	// Validation happens before any I/O.
	if side != models.SideBuy && side != models.SideSell {
		return rejected(ReasonValidation, "unknown order side %q", side)
	}
	quantity = math.Abs(quantity)
	if quantity == 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return rejected(ReasonValidation, "order quantity must be a positive number")
	}

	symbol, _ := e.market.Route(assetID)
	price := e.market.Price(ctx, assetID)
	if price <= marketdata.PriceUnavailable {
		l.Info("Order rejected, market unavailable", zap.String("symbol", symbol))
		return rejected(ReasonMarketUnavailable, "market for %s is closed or unreachable", symbol)
	}

	totalValue := price * quantity

	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	trades, err := e.store.TradeLog(ctx, userID, credential)
	if err != nil {
		l.Error("Could not read trade history", zap.Error(err))
		return rejected(ReasonStoreFailure, "could not read trade history")
	}

	// Authoritative balance by replay, per the reconciler's algorithm.
	balance := ReplayBalance(trades)

	var newBalance float64
	switch side {
	case models.SideBuy:
		if balance < totalValue {
			l.Info("Order rejected, insufficient funds",
				zap.Float64("balance", balance), zap.Float64("total_value", totalValue))
			return rejected(ReasonInsufficientFunds,
				"insufficient funds: order costs %.2f but only %.2f is available (short %.2f)",
				totalValue, balance, totalValue-balance)
		}
		newBalance = balance - totalValue

	case models.SideSell:
		held := HoldingsFor(trades, symbol)
		if held < quantity {
			l.Info("Order rejected, insufficient holdings",
				zap.Float64("held", held), zap.String("symbol", symbol))
			return rejected(ReasonInsufficientHoldings,
				"insufficient holdings: tried to sell %g %s but only %g is held",
				quantity, symbol, held)
		}
		newBalance = balance + totalValue
	}

	profile, err := e.store.Profile(ctx, userID, credential)
	if err != nil {
		if errors.Is(err, ledger.ErrProfileNotFound) {
			return rejected(ReasonStoreFailure, "no profile found for user")
		}
		l.Error("Could not read profile", zap.Error(err))
		return rejected(ReasonStoreFailure, "could not read profile")
	}

	// Balance first, record second: a reconciliation replay running
	// concurrently must never see a record without its balance update.
	profile.VirtualBalance = newBalance
	if err := e.store.SaveProfile(ctx, userID, credential, *profile); err != nil {
		l.Error("Failed to persist balance", zap.Error(err))
		return rejected(ReasonStoreFailure, "could not persist balance update")
	}

	record := models.TradeRecord{
		Kind:             side,
		AssetSymbol:      symbol,
		EntryPrice:       price,
		Quantity:         quantity,
		TotalValue:       totalValue,
		ResultingBalance: newBalance,
		Timestamp:        time.Now().UTC().Format(models.TimestampLayout),
		Note:             note,
	}
	if err := e.store.AppendTrade(ctx, userID, credential, record); err != nil {
		// The cached balance is now ahead of the log; the next reconcile
		// replays the log and heals it.
		l.Error("Failed to append trade record", zap.Error(err))
		return rejected(ReasonStoreFailure, "could not record trade")
	}

	l.Info("Order executed",
		zap.String("symbol", symbol),
		zap.Float64("price", price),
		zap.Float64("total_value", totalValue),
		zap.Float64("new_balance", newBalance))

	return accepted(
		fmtOrderMessage(side, quantity, symbol, price, totalValue),
		newBalance)
}

func fmtOrderMessage(side models.Side, quantity float64, symbol string, price, totalValue float64) string {
	verb := "Bought"
	if side == models.SideSell {
		verb = "Sold"
	}
	return fmt.Sprintf("%s %g %s at %.2f for a total of %.2f", verb, quantity, symbol, price, totalValue)
}
