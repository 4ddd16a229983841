package paper

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"paper-trader-go/internal/ledger"
	"paper-trader-go/internal/marketdata"
	"paper-trader-go/internal/models"

	"go.uber.org/zap"
)

// BalancePoint is one point on the cash-balance-over-time curve: the
// balance snapshot after a trade, labelled with a short timestamp.
type BalancePoint struct {
	Label   string  `json:"label"`
	Balance float64 `json:"balance"`
}

// HoldingDetail is one open position revalued at current market price.
type HoldingDetail struct {
	Symbol           string  `json:"symbol"`
	Quantity         float64 `json:"quantity"`
	AvgCost          float64 `json:"avg_cost"`
	CostBasis        float64 `json:"cost_basis"`
	MarketPrice      float64 `json:"market_price"`
	MarketValue      float64 `json:"market_value"`
	UnrealizedPnLPct float64 `json:"unrealized_pnl_pct"`
}

// CompositionEntry is one slice of the portfolio breakdown. Entries
// always include cash and sum to equity.
type CompositionEntry struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Stats aggregates the account-level numbers.
type Stats struct {
	CashBalance float64 `json:"cash_balance"`
	Equity      float64 `json:"equity"`
	TotalGain   float64 `json:"total_gain"`
	TradeCount  int     `json:"trade_count"`
}

// Performance is the full reporting view derived from one replay of the
// trade log.
type Performance struct {
	TradeHistory []models.TradeRecord `json:"trade_history"`
	TimeSeries   []BalancePoint       `json:"time_series"`
	Holdings     []HoldingDetail      `json:"holdings"`
	Composition  []CompositionEntry   `json:"composition"`
	Stats        Stats                `json:"stats"`
}

// Valuator derives performance and composition views from the trade log
// and current market prices.
type Valuator struct {
	logger *zap.Logger
	store  ledger.Store
	market MarketData
}

// NewValuator creates a new portfolio valuator.
func NewValuator(logger *zap.Logger, store ledger.Store, market MarketData) *Valuator {
	return &Valuator{logger: logger, store: store, market: market}
}

// Performance replays the trade log once and aggregates balance, holdings
// (revalued at market), equity and the composition breakdown. An empty
// log yields equity equal to StartingBalance and a cash-only composition.
func (v *Valuator) Performance(ctx context.Context, userID, credential string) (*Performance, error) {
	trades, err := v.store.TradeLog(ctx, userID, credential)
	if err != nil {
		return nil, fmt.Errorf("performance: %w", err)
	}

	perf := &Performance{
		TradeHistory: trades,
		TimeSeries:   make([]BalancePoint, 0, len(trades)),
	}

	for _, t := range trades {
		perf.TimeSeries = append(perf.TimeSeries, BalancePoint{
			Label:   shortLabel(t.Timestamp),
			Balance: t.ResultingBalance,
		})
	}

	cash := ReplayBalance(trades)
	holdings := AllHoldings(trades)

	symbols := make([]string, 0, len(holdings))
	for symbol := range holdings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	equity := cash
	for _, symbol := range symbols {
		pos := holdings[symbol]
		if pos.Quantity < DustThreshold {
			continue
		}

		avgCost := pos.CostBasis / pos.Quantity

		price := v.market.SymbolPrice(ctx, symbol)
		if price <= marketdata.PriceUnavailable {
			// Falling back to the average cost keeps the position valued
			// at something sane; zero would poison every derived ratio.
			v.logger.Debug("No market price, valuing at average cost",
				zap.String("symbol", symbol))
			price = avgCost
		}

		marketValue := pos.Quantity * price
		var pnlPct float64
		if pos.CostBasis > 0 {
			pnlPct = (marketValue - pos.CostBasis) / pos.CostBasis * 100
		}

		perf.Holdings = append(perf.Holdings, HoldingDetail{
			Symbol:           symbol,
			Quantity:         pos.Quantity,
			AvgCost:          avgCost,
			CostBasis:        pos.CostBasis,
			MarketPrice:      price,
			MarketValue:      marketValue,
			UnrealizedPnLPct: pnlPct,
		})
		equity += marketValue
	}

	perf.Composition = append(perf.Composition, CompositionEntry{Label: "cash", Value: cash})
	for _, h := range perf.Holdings {
		perf.Composition = append(perf.Composition, CompositionEntry{Label: h.Symbol, Value: h.MarketValue})
	}

	perf.Stats = Stats{
		CashBalance: cash,
		Equity:      equity,
		TotalGain:   equity - StartingBalance,
		TradeCount:  len(trades),
	}

	return perf, nil
}

// shortLabel reduces a full timestamp to its time-of-day part for chart
// axis labels, falling back to the whole string.
func shortLabel(timestamp string) string {
	parts := strings.SplitN(timestamp, " ", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return parts[0]
}
