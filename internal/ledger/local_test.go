package ledger

import (
	"context"
	"testing"

	"paper-trader-go/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	// Use a new, non-shared in-memory database for each test to ensure isolation.
	db, err := Open("file::memory:")
	assert.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewLocalStore(db, zap.NewNop())
}

func TestLocalStore_TradeLogSortedByTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Insert out of order; retrieval must still be chronological.
	timestamps := []string{"2026-01-03 09:00:00", "2026-01-01 09:00:00", "2026-01-02 09:00:00"}
	for _, ts := range timestamps {
		err := store.AppendTrade(ctx, "u1", "", models.TradeRecord{
			Kind: models.SideBuy, AssetSymbol: "BTC/USD", Quantity: 0.1,
			EntryPrice: 50000, TotalValue: 5000, Timestamp: ts,
		})
		assert.NoError(t, err)
	}

	trades, err := store.TradeLog(ctx, "u1", "")
	assert.NoError(t, err)
	assert.Len(t, trades, 3)
	assert.Equal(t, "2026-01-01 09:00:00", trades[0].Timestamp)
	assert.Equal(t, "2026-01-02 09:00:00", trades[1].Timestamp)
	assert.Equal(t, "2026-01-03 09:00:00", trades[2].Timestamp)

	// Every record received its own unique key.
	assert.NotEmpty(t, trades[0].Key)
	assert.NotEqual(t, trades[0].Key, trades[1].Key)
}

func TestLocalStore_TradeLogIsolatedPerUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := models.TradeRecord{Kind: models.SideBuy, AssetSymbol: "ETH/USD", Quantity: 1, EntryPrice: 2000, TotalValue: 2000, Timestamp: "2026-01-01 09:00:00"}
	assert.NoError(t, store.AppendTrade(ctx, "u1", "", rec))

	trades, err := store.TradeLog(ctx, "u2", "")
	assert.NoError(t, err)
	assert.Empty(t, trades)
}

func TestLocalStore_ClearTradeLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := models.TradeRecord{Kind: models.SideBuy, AssetSymbol: "ETH/USD", Quantity: 1, EntryPrice: 2000, TotalValue: 2000, Timestamp: "2026-01-01 09:00:00"}
	assert.NoError(t, store.AppendTrade(ctx, "u1", "", rec))
	assert.NoError(t, store.ClearTradeLog(ctx, "u1", ""))

	trades, err := store.TradeLog(ctx, "u1", "")
	assert.NoError(t, err)
	assert.Empty(t, trades)
}

func TestLocalStore_ProfileRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Profile(ctx, "u1", "")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	profile := models.UserProfile{
		Username: "trader", Email: "trader@example.com",
		RiskTolerance: "medium", ExperienceLevel: "novice",
		PreferredMarket: "crypto", VirtualBalance: 100000,
	}
	assert.NoError(t, store.SaveProfile(ctx, "u1", "", profile))

	got, err := store.Profile(ctx, "u1", "")
	assert.NoError(t, err)
	assert.Equal(t, profile, *got)

	// Save is whole-record replace.
	profile.VirtualBalance = 95000
	assert.NoError(t, store.SaveProfile(ctx, "u1", "", profile))
	got, err = store.Profile(ctx, "u1", "")
	assert.NoError(t, err)
	assert.Equal(t, 95000.0, got.VirtualBalance)
}

func TestLocalStore_BotSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.BotSettings(ctx, "u1", "")
	assert.NoError(t, err)
	assert.Nil(t, settings)

	want := models.BotSettings{
		SelectedAsset: "crypto_eth_usd", RiskTolerance: "high",
		ActiveIndicators: "RSI", TradingWindow: "09:00-17:00", IsActive: true,
	}
	assert.NoError(t, store.SaveBotSettings(ctx, "u1", "", want))

	settings, err = store.BotSettings(ctx, "u1", "")
	assert.NoError(t, err)
	assert.Equal(t, want, *settings)
}
