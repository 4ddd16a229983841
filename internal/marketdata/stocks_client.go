package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"paper-trader-go/internal/config"
	"paper-trader-go/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// QuoteFeed is the market-data-provider interface the router depends on.
// It covers stocks, forex pairs and commodities.
type QuoteFeed interface {
	Quote(ctx context.Context, symbol string) (float64, error)
	History(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
}

// StocksClient fetches quotes and history from a Yahoo-style chart API.
type StocksClient struct {
	restDoer
}

var _ QuoteFeed = (*StocksClient)(nil)

// NewStocksClient creates a new stocks/forex feed client.
func NewStocksClient(cfg *config.MarketData, logger *zap.Logger) *StocksClient {
	client := resty.New().
		SetBaseURL(cfg.StocksBaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &StocksClient{restDoer{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}}
}

// providerSymbol translates a canonical symbol into the provider's ticker.
// Forex pairs become "EURUSD=X"; gold maps to the futures contract; plain
// equity tickers pass through unchanged.
func providerSymbol(symbol string) string {
	switch symbol {
	case "XAU/USD":
		return "GC=F"
	}
	if strings.Contains(symbol, "/") {
		return strings.ReplaceAll(symbol, "/", "") + "=X"
	}
	return symbol
}

// chartResponse is the subset of the provider's chart payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

func (c *StocksClient) fetchChart(ctx context.Context, symbol, interval, dataRange string) (*chartResponse, error) {
	var chart chartResponse

	req := c.client.R().
		SetQueryParams(map[string]string{
			"interval": interval,
			"range":    dataRange,
		}).
		SetResult(&chart).
		SetHeader("Content-Type", "application/json")

	url := "/v8/finance/chart/" + providerSymbol(symbol)
	if _, err := c.doRequest(ctx, "GET", url, req); err != nil {
		return nil, fmt.Errorf("failed to get chart for %s: %w", symbol, err)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", symbol)
	}
	return &chart, nil
}

// Quote fetches the current market price for one symbol.
func (c *StocksClient) Quote(ctx context.Context, symbol string) (float64, error) {
	chart, err := c.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return 0, err
	}
	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("no market price for %s", symbol)
	}
	return price, nil
}

// History fetches up to limit OHLC bars for one symbol, oldest first.
func (c *StocksClient) History(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	chart, err := c.fetchChart(ctx, symbol, interval, rangeForInterval(interval))
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		candles = append(candles, models.Candle{
			OpenTime: ts * 1000,
			Open:     at(quote.Open, i),
			High:     at(quote.High, i),
			Low:      at(quote.Low, i),
			Close:    at(quote.Close, i),
			Volume:   at(quote.Volume, i),
		})
	}
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// rangeForInterval picks a wide enough data range for the requested bar size.
func rangeForInterval(interval string) string {
	switch {
	case strings.HasSuffix(interval, "m"):
		return "5d"
	case strings.HasSuffix(interval, "h"):
		return "1mo"
	default:
		return "6mo"
	}
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}
