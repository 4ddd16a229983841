package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"paper-trader-go/internal/config"
	"paper-trader-go/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CryptoFeed is the exchange-side interface the router depends on.
type CryptoFeed interface {
	TickerPrice(ctx context.Context, symbol string) (float64, error)
	Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
}

// CryptoClient fetches spot prices and candles from a Binance-style
// public market-data API. All endpoints used here are unauthenticated.
type CryptoClient struct {
	restDoer
}

// ensure CryptoClient implements the interface
var _ CryptoFeed = (*CryptoClient)(nil)

// NewCryptoClient creates a new crypto feed client.
func NewCryptoClient(cfg *config.MarketData, logger *zap.Logger) *CryptoClient {
	client := resty.New().
		SetBaseURL(cfg.CryptoBaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &CryptoClient{restDoer{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}}
}

// feedSymbol translates a canonical symbol like "BTC/USD" into the feed's
// native form ("BTCUSDT"). The feed quotes against USDT rather than USD.
func feedSymbol(symbol string) string {
	s := strings.ReplaceAll(symbol, "/", "")
	if strings.HasSuffix(s, "USD") {
		s += "T"
	}
	return s
}

// tickerPriceResponse represents the response for a single ticker price.
type tickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// TickerPrice fetches the latest price for one symbol.
func (c *CryptoClient) TickerPrice(ctx context.Context, symbol string) (float64, error) {
	var ticker tickerPriceResponse

	req := c.client.R().
		SetQueryParam("symbol", feedSymbol(symbol)).
		SetResult(&ticker).
		SetHeader("Content-Type", "application/json")

	_, err := c.doRequest(ctx, "GET", "/ticker/price", req)
	if err != nil {
		return 0, fmt.Errorf("failed to get ticker price for %s: %w", symbol, err)
	}

	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ticker price %q for %s: %w", ticker.Price, symbol, err)
	}
	return price, nil
}

// Klines fetches up to limit OHLC bars for one symbol, oldest first.
// The feed encodes each bar as a JSON array of mixed numbers and strings.
func (c *CryptoClient) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	var raw [][]interface{}

	req := c.client.R().
		SetQueryParams(map[string]string{
			"symbol":   feedSymbol(symbol),
			"interval": interval,
			"limit":    strconv.Itoa(limit),
		}).
		SetResult(&raw).
		SetHeader("Content-Type", "application/json")

	_, err := c.doRequest(ctx, "GET", "/klines", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get klines for %s: %w", symbol, err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, bar := range raw {
		if len(bar) < 6 {
			continue
		}
		openTime, ok := bar[0].(float64)
		if !ok {
			continue
		}
		candles = append(candles, models.Candle{
			OpenTime: int64(openTime),
			Open:     parseBarField(bar[1]),
			High:     parseBarField(bar[2]),
			Low:      parseBarField(bar[3]),
			Close:    parseBarField(bar[4]),
			Volume:   parseBarField(bar[5]),
		})
	}
	return candles, nil
}

func parseBarField(v interface{}) float64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
