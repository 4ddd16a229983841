package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"paper-trader-go/internal/analysis"
	"paper-trader-go/internal/ledger"
	"paper-trader-go/internal/marketdata"
	"paper-trader-go/internal/models"
	"paper-trader-go/internal/paper"

	"go.uber.org/zap"
)

const (
	rsiPeriod     = 14
	rsiOversold   = 30
	rsiOverbought = 70
	candleLimit   = 50
	timeframe     = "1h"
)

// riskFraction is the share of cash committed per automated BUY.
var riskFraction = map[string]float64{
	"low":    0.05,
	"medium": 0.10,
	"high":   0.25,
}

// MarketData is the slice of the router the bot needs.
type MarketData interface {
	Route(assetID string) (string, marketdata.Source)
	Price(ctx context.Context, assetID string) float64
	Candles(ctx context.Context, assetID, timeframe string, limit int) []models.Candle
}

// Bot runs the automated strategy check. There is no background
// scheduler: CheckAndTrade is called inline while serving a dashboard or
// performance request, which trades timeliness for not double-executing
// across process restarts.
type Bot struct {
	logger   *zap.Logger
	store    ledger.Store
	market   MarketData
	executor *paper.Executor
}

// New creates the bot service.
func New(logger *zap.Logger, store ledger.Store, market MarketData, executor *paper.Executor) *Bot {
	return &Bot{logger: logger, store: store, market: market, executor: executor}
}

// CheckAndTrade evaluates the user's bot settings and, when the strategy
// fires inside the configured trading window, routes one order through
// the executor. It returns nil when no order was attempted. All
// validation lives in the executor; the bot never duplicates it.
func (b *Bot) CheckAndTrade(ctx context.Context, userID, credential string) *paper.Result {
	settings, err := b.store.BotSettings(ctx, userID, credential)
	if err != nil {
		b.logger.Warn("Could not read bot settings", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if settings == nil || !settings.IsActive {
		return nil
	}
	if !withinWindow(settings.TradingWindow, time.Now()) {
		return nil
	}

	assetID := settings.SelectedAsset
	candles := b.market.Candles(ctx, assetID, timeframe, candleLimit)
	if len(candles) < rsiPeriod+1 {
		b.logger.Debug("Not enough candles for a signal", zap.String("asset_id", assetID))
		return nil
	}

	rsi := analysis.RSI(analysis.Closes(candles), rsiPeriod)

	var side models.Side
	switch {
	case rsi < rsiOversold:
		side = models.SideBuy
	case rsi > rsiOverbought:
		side = models.SideSell
	default:
		return nil
	}

	quantity := b.orderQuantity(ctx, userID, credential, assetID, side, settings.RiskTolerance)
	if quantity <= 0 {
		return nil
	}

	note := fmt.Sprintf("automated: RSI %.1f on %s %s", rsi, timeframe, settings.ActiveIndicators)
	result := b.executor.Execute(ctx, userID, credential, assetID, side, quantity, note)

	b.logger.Info("Automated order attempted",
		zap.String("user_id", userID),
		zap.String("asset_id", assetID),
		zap.String("side", string(side)),
		zap.Bool("success", result.OK),
		zap.String("message", result.Message))

	return &result
}

// orderQuantity sizes the order: BUYs commit a risk-scaled fraction of
// the replayed cash balance, SELLs close the whole position.
func (b *Bot) orderQuantity(ctx context.Context, userID, credential, assetID string, side models.Side, risk string) float64 {
	trades, err := b.store.TradeLog(ctx, userID, credential)
	if err != nil {
		b.logger.Warn("Could not read trade log for sizing", zap.Error(err))
		return 0
	}

	symbol, _ := b.market.Route(assetID)
	if side == models.SideSell {
		return paper.HoldingsFor(trades, symbol)
	}

	price := b.market.Price(ctx, assetID)
	if price <= marketdata.PriceUnavailable {
		return 0
	}

	fraction, ok := riskFraction[strings.ToLower(risk)]
	if !ok {
		fraction = riskFraction["medium"]
	}
	return paper.ReplayBalance(trades) * fraction / price
}

// withinWindow reports whether now falls inside a "HH:MM-HH:MM" window.
// Windows may wrap midnight. Malformed windows never trade.
func withinWindow(window string, now time.Time) bool {
	parts := strings.SplitN(window, "-", 2)
	if len(parts) != 2 {
		return false
	}
	start, err1 := time.Parse("15:04", strings.TrimSpace(parts[0]))
	end, err2 := time.Parse("15:04", strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return false
	}

	minutes := now.Hour()*60 + now.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	if startMin <= endMin {
		return minutes >= startMin && minutes < endMin
	}
	return minutes >= startMin || minutes < endMin
}
