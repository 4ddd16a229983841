package paper

import (
	"context"
	"testing"

	"paper-trader-go/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBootstrap_SeedsProfileAndSettings(t *testing.T) {
	store := setupStore(t) // Bootstrap runs inside setupStore
	ctx := context.Background()

	profile, err := store.Profile(ctx, testUser, testToken)
	assert.NoError(t, err)
	assert.Equal(t, "trader", profile.Username)
	assert.Equal(t, StartingBalance, profile.VirtualBalance)
	assert.Equal(t, "medium", profile.RiskTolerance)

	settings, err := store.BotSettings(ctx, testUser, testToken)
	assert.NoError(t, err)
	assert.NotNil(t, settings)
	assert.False(t, settings.IsActive)
	assert.Equal(t, "crypto_btc_usd", settings.SelectedAsset)
}

func TestReset_ClearsHistoryAndRestoresBalance(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	trades := []models.TradeRecord{
		{Kind: models.SideBuy, AssetSymbol: "BTC/USD", EntryPrice: 50000, Quantity: 0.5, TotalValue: 25000, ResultingBalance: 75000, Timestamp: "2026-01-02 09:00:00"},
		{Kind: models.SideSell, AssetSymbol: "BTC/USD", EntryPrice: 51000, Quantity: 0.2, TotalValue: 10200, ResultingBalance: 85200, Timestamp: "2026-01-02 12:00:00"},
	}
	for _, tr := range trades {
		assert.NoError(t, store.AppendTrade(ctx, testUser, testToken, tr))
	}

	account := NewAccount(zap.NewNop(), store)
	assert.NoError(t, account.Reset(ctx, testUser, testToken))

	log, err := store.TradeLog(ctx, testUser, testToken)
	assert.NoError(t, err)
	assert.Empty(t, log)

	profile, err := store.Profile(ctx, testUser, testToken)
	assert.NoError(t, err)
	assert.Equal(t, StartingBalance, profile.VirtualBalance)

	// Reconciling the freshly reset account is a no-op.
	rec := NewReconciler(zap.NewNop(), store)
	balance, err := rec.Reconcile(ctx, testUser, testToken)
	assert.NoError(t, err)
	assert.Equal(t, StartingBalance, balance)
}
