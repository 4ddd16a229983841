package paper

import (
	"context"
	"errors"
	"fmt"

	"paper-trader-go/internal/ledger"
	"paper-trader-go/internal/models"

	"go.uber.org/zap"
)

// ReplayBalance computes the authoritative cash balance for a trade log:
// start from StartingBalance, subtract every BUY's total value and add
// every SELL's. The result is a pure function of the log. It never
// depends on any cached value, which makes drift impossible to propagate.
func ReplayBalance(trades []models.TradeRecord) float64 {
	balance := StartingBalance
	for _, t := range trades {
		switch t.Kind {
		case models.SideBuy:
			balance -= t.TotalValue
		case models.SideSell:
			balance += t.TotalValue
		}
	}
	return balance
}

// Reconciler recomputes a user's cash balance from the trade log and
// heals any drift in the cached profile value.
type Reconciler struct {
	logger *zap.Logger
	store  ledger.Store
}

// NewReconciler creates a new reconciler.
func NewReconciler(logger *zap.Logger, store ledger.Store) *Reconciler {
	return &Reconciler{logger: logger, store: store}
}

// Reconcile replays the user's trade log and writes the result back to the
// profile when it diverges from the cached value. If the log cannot be
// read it returns an error and leaves the cached value untouched: a read
// failure is not an empty history, and resetting a balance from it would
// fabricate money.
func (r *Reconciler) Reconcile(ctx context.Context, userID, credential string) (float64, error) {
	trades, err := r.store.TradeLog(ctx, userID, credential)
	if err != nil {
		return 0, fmt.Errorf("reconcile: %w", err)
	}

	balance := ReplayBalance(trades)

	profile, err := r.store.Profile(ctx, userID, credential)
	if err != nil {
		if errors.Is(err, ledger.ErrProfileNotFound) {
			// Nothing to heal yet; the replayed value is still authoritative.
			return balance, nil
		}
		r.logger.Warn("Could not read profile for balance write-back",
			zap.String("user_id", userID), zap.Error(err))
		return balance, nil
	}

	if profile.VirtualBalance != balance {
		r.logger.Info("Healing cached balance drift",
			zap.String("user_id", userID),
			zap.Float64("cached", profile.VirtualBalance),
			zap.Float64("reconciled", balance))
		profile.VirtualBalance = balance
		if err := r.store.SaveProfile(ctx, userID, credential, *profile); err != nil {
			r.logger.Warn("Failed to write back reconciled balance",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	return balance, nil
}
