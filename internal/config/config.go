package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     Server     `mapstructure:"server"`
	Logger     Logger     `mapstructure:"logger"`
	Ledger     Ledger     `mapstructure:"ledger"`
	MarketData MarketData `mapstructure:"market_data"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Ledger selects and configures the ledger store backend.
// Backend is either "rtdb" (hosted keyed store over HTTP) or "sqlite".
type Ledger struct {
	Backend string `mapstructure:"backend"`
	BaseURL string `mapstructure:"base_url"`
	DSN     string `mapstructure:"dsn"`
}

// MarketData holds the configuration for the price and candle feeds.
type MarketData struct {
	CryptoBaseURL  string  `mapstructure:"crypto_base_url"`
	StocksBaseURL  string  `mapstructure:"stocks_base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("ledger.backend", "sqlite")
	viper.SetDefault("ledger.dsn", "paper-trader.db")
	viper.SetDefault("market_data.crypto_base_url", "https://api.binance.com/api/v3")
	viper.SetDefault("market_data.stocks_base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("market_data.rate_limit", 20)      // requests per second
	viper.SetDefault("market_data.rate_limit_burst", 5) // burst size
	viper.SetDefault("market_data.timeout_seconds", 5)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
