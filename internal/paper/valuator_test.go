package paper

import (
	"context"
	"testing"

	"paper-trader-go/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPerformance_EmptyLog(t *testing.T) {
	store := setupStore(t)
	market := new(MockMarket)
	val := NewValuator(zap.NewNop(), store, market)

	perf, err := val.Performance(context.Background(), testUser, testToken)
	assert.NoError(t, err)

	assert.Equal(t, StartingBalance, perf.Stats.Equity)
	assert.Equal(t, 0.0, perf.Stats.TotalGain)
	assert.Equal(t, 0, perf.Stats.TradeCount)
	assert.Empty(t, perf.TradeHistory)
	assert.Empty(t, perf.TimeSeries)
	assert.Equal(t, []CompositionEntry{{Label: "cash", Value: StartingBalance}}, perf.Composition)
}

func TestPerformance_RevaluesHoldingsAtMarket(t *testing.T) {
	store := setupStore(t)
	market := new(MockMarket)
	val := NewValuator(zap.NewNop(), store, market)
	ctx := context.Background()

	err := store.AppendTrade(ctx, testUser, testToken, models.TradeRecord{
		Kind: models.SideBuy, AssetSymbol: "BTC/USD", EntryPrice: 50000,
		Quantity: 0.1, TotalValue: 5000, ResultingBalance: 95000,
		Timestamp: "2026-01-02 10:30:00",
	})
	assert.NoError(t, err)

	market.On("SymbolPrice", "BTC/USD").Return(60000.0)

	perf, err := val.Performance(ctx, testUser, testToken)
	assert.NoError(t, err)

	assert.Len(t, perf.Holdings, 1)
	h := perf.Holdings[0]
	assert.Equal(t, "BTC/USD", h.Symbol)
	assert.InDelta(t, 0.1, h.Quantity, 1e-9)
	assert.InDelta(t, 50000.0, h.AvgCost, 1e-9)
	assert.InDelta(t, 6000.0, h.MarketValue, 1e-6)
	assert.InDelta(t, 20.0, h.UnrealizedPnLPct, 1e-6)

	assert.InDelta(t, 95000.0, perf.Stats.CashBalance, 1e-9)
	assert.InDelta(t, 101000.0, perf.Stats.Equity, 1e-6)
	assert.InDelta(t, 1000.0, perf.Stats.TotalGain, 1e-6)

	// Composition always carries cash first and sums to equity.
	assert.Equal(t, "cash", perf.Composition[0].Label)
	var sum float64
	for _, c := range perf.Composition {
		sum += c.Value
	}
	assert.InDelta(t, perf.Stats.Equity, sum, 1e-6)

	// Time series is the cash-balance curve with short labels.
	assert.Len(t, perf.TimeSeries, 1)
	assert.Equal(t, "10:30:00", perf.TimeSeries[0].Label)
	assert.InDelta(t, 95000.0, perf.TimeSeries[0].Balance, 1e-9)
}

func TestPerformance_PriceFallsBackToAvgCost(t *testing.T) {
	store := setupStore(t)
	market := new(MockMarket)
	val := NewValuator(zap.NewNop(), store, market)
	ctx := context.Background()

	err := store.AppendTrade(ctx, testUser, testToken, models.TradeRecord{
		Kind: models.SideBuy, AssetSymbol: "SPY", EntryPrice: 500,
		Quantity: 10, TotalValue: 5000, ResultingBalance: 95000,
		Timestamp: "2026-01-02 10:00:00",
	})
	assert.NoError(t, err)

	// Market closed: the position is valued at average cost, never zero.
	market.On("SymbolPrice", "SPY").Return(0.0)

	perf, err := val.Performance(ctx, testUser, testToken)
	assert.NoError(t, err)

	assert.Len(t, perf.Holdings, 1)
	h := perf.Holdings[0]
	assert.InDelta(t, 500.0, h.MarketPrice, 1e-9)
	assert.InDelta(t, 5000.0, h.MarketValue, 1e-9)
	assert.InDelta(t, 0.0, h.UnrealizedPnLPct, 1e-9)
	assert.InDelta(t, StartingBalance, perf.Stats.Equity, 1e-9)
}

func TestPerformance_SkipsDustPositions(t *testing.T) {
	store := setupStore(t)
	market := new(MockMarket)
	val := NewValuator(zap.NewNop(), store, market)
	ctx := context.Background()

	trades := []models.TradeRecord{
		{Kind: models.SideBuy, AssetSymbol: "BTC/USD", EntryPrice: 50000, Quantity: 0.1, TotalValue: 5000, ResultingBalance: 95000, Timestamp: "2026-01-02 10:00:00"},
		{Kind: models.SideSell, AssetSymbol: "BTC/USD", EntryPrice: 50000, Quantity: 0.1 - 1e-9, TotalValue: 5000, ResultingBalance: 100000, Timestamp: "2026-01-02 11:00:00"},
	}
	for _, tr := range trades {
		assert.NoError(t, store.AppendTrade(ctx, testUser, testToken, tr))
	}

	perf, err := val.Performance(ctx, testUser, testToken)
	assert.NoError(t, err)
	assert.Empty(t, perf.Holdings)
	assert.Len(t, perf.Composition, 1)
}
