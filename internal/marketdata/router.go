package marketdata

import (
	"context"

	"paper-trader-go/internal/models"

	"go.uber.org/zap"
)

// Source identifies which upstream feed serves an asset.
type Source string

const (
	SourceCrypto Source = "crypto"
	SourceStocks Source = "stocks"
)

// PriceUnavailable is the sentinel returned when no current price can be
// obtained. A closed or unreachable market is a normal condition here, not
// an error: callers branch on it (reject the order, show "market closed").
const PriceUnavailable = 0

// route is one row of the asset translation table.
type route struct {
	Symbol string
	Source Source
}

// assetTable maps internal asset identifiers to (exchange symbol, source).
var assetTable = map[string]route{
	"crypto_btc_usd":  {"BTC/USD", SourceCrypto},
	"crypto_eth_usd":  {"ETH/USD", SourceCrypto},
	"crypto_sol_usd":  {"SOL/USD", SourceCrypto},
	"forex_eur_usd":   {"EUR/USD", SourceStocks},
	"commodities_oro": {"XAU/USD", SourceStocks},
	"indices_spx500":  {"SPY", SourceStocks},
}

// defaultRoute is used for any unrecognized asset identifier. Routing is
// total: downstream components handle "no price", never "no route".
var defaultRoute = route{"SPY", SourceStocks}

// Router resolves asset identifiers and fetches market data from the
// correct upstream feed.
type Router struct {
	logger *zap.Logger
	crypto CryptoFeed
	stocks QuoteFeed
}

// NewRouter creates a router over the two injected feed clients.
func NewRouter(logger *zap.Logger, crypto CryptoFeed, stocks QuoteFeed) *Router {
	return &Router{
		logger: logger,
		crypto: crypto,
		stocks: stocks,
	}
}

// Route maps an internal asset identifier to its canonical exchange symbol
// and data source. Total over all inputs.
func (r *Router) Route(assetID string) (string, Source) {
	if rt, ok := assetTable[assetID]; ok {
		return rt.Symbol, rt.Source
	}
	return defaultRoute.Symbol, defaultRoute.Source
}

// Price returns the current price for an asset, or PriceUnavailable when the
// routed feed is unreachable or the market is closed.
func (r *Router) Price(ctx context.Context, assetID string) float64 {
	symbol, source := r.Route(assetID)

	var price float64
	var err error
	switch source {
	case SourceCrypto:
		price, err = r.crypto.TickerPrice(ctx, symbol)
	default:
		price, err = r.stocks.Quote(ctx, symbol)
	}

	if err != nil {
		r.logger.Warn("Price unavailable",
			zap.String("asset_id", assetID),
			zap.String("symbol", symbol),
			zap.String("source", string(source)),
			zap.Error(err))
		return PriceUnavailable
	}
	return price
}

// SymbolPrice returns the current price for an already-routed canonical
// symbol, or PriceUnavailable. Symbols not present in the routing table are
// assumed to come from the general market-data feed.
func (r *Router) SymbolPrice(ctx context.Context, symbol string) float64 {
	source := defaultRoute.Source
	for _, rt := range assetTable {
		if rt.Symbol == symbol {
			source = rt.Source
			break
		}
	}

	var price float64
	var err error
	switch source {
	case SourceCrypto:
		price, err = r.crypto.TickerPrice(ctx, symbol)
	default:
		price, err = r.stocks.Quote(ctx, symbol)
	}

	if err != nil {
		r.logger.Warn("Price unavailable",
			zap.String("symbol", symbol),
			zap.String("source", string(source)),
			zap.Error(err))
		return PriceUnavailable
	}
	return price
}

// Candles returns up to limit OHLC bars for an asset, oldest first.
// Returns an empty slice when the feed is unavailable.
func (r *Router) Candles(ctx context.Context, assetID, timeframe string, limit int) []models.Candle {
	symbol, source := r.Route(assetID)

	var candles []models.Candle
	var err error
	switch source {
	case SourceCrypto:
		candles, err = r.crypto.Klines(ctx, symbol, timeframe, limit)
	default:
		candles, err = r.stocks.History(ctx, symbol, timeframe, limit)
	}

	if err != nil {
		r.logger.Warn("Candles unavailable",
			zap.String("asset_id", assetID),
			zap.String("symbol", symbol),
			zap.Error(err))
		return nil
	}
	return candles
}
