package paper

import (
	"context"
	"fmt"

	"paper-trader-go/internal/ledger"
	"paper-trader-go/internal/models"

	"go.uber.org/zap"
)

// Account bundles the profile lifecycle operations around the ledger.
type Account struct {
	logger *zap.Logger
	store  ledger.Store
}

// NewAccount creates the account service.
func NewAccount(logger *zap.Logger, store ledger.Store) *Account {
	return &Account{logger: logger, store: store}
}

// Bootstrap seeds a freshly registered user: profile with the starting
// balance plus default bot settings (inactive).
func (a *Account) Bootstrap(ctx context.Context, userID, credential, email, username string) error {
	profile := models.UserProfile{
		Username:        username,
		Email:           email,
		RiskTolerance:   "medium",
		ExperienceLevel: "novice",
		PreferredMarket: "crypto",
		VirtualBalance:  StartingBalance,
	}
	if err := a.store.SaveProfile(ctx, userID, credential, profile); err != nil {
		return fmt.Errorf("bootstrap profile: %w", err)
	}

	settings := models.BotSettings{
		SelectedAsset:    "crypto_btc_usd",
		RiskTolerance:    "medium",
		ActiveIndicators: "RSI, MACD",
		TradingWindow:    "09:00-17:00",
		IsActive:         false,
	}
	if err := a.store.SaveBotSettings(ctx, userID, credential, settings); err != nil {
		return fmt.Errorf("bootstrap bot settings: %w", err)
	}

	a.logger.Info("Bootstrapped new account", zap.String("user_id", userID))
	return nil
}

// Reset erases the user's trade history and puts the cash balance back to
// exactly StartingBalance. The clear must land before the balance write:
// a reset balance over a surviving log would immediately be "healed" away
// by the next reconcile.
func (a *Account) Reset(ctx context.Context, userID, credential string) error {
	if err := a.store.ClearTradeLog(ctx, userID, credential); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	profile, err := a.store.Profile(ctx, userID, credential)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	profile.VirtualBalance = StartingBalance
	if err := a.store.SaveProfile(ctx, userID, credential, *profile); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	a.logger.Info("Reset account to starting balance", zap.String("user_id", userID))
	return nil
}
