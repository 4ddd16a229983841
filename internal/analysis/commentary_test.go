package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassOf(t *testing.T) {
	assert.Equal(t, ClassCrypto, ClassOf("crypto_btc_usd"))
	assert.Equal(t, ClassForex, ClassOf("forex_eur_usd"))
	assert.Equal(t, ClassStock, ClassOf("indices_spx500"))
	assert.Equal(t, ClassCommodity, ClassOf("commodities_oro"))

	t.Run("UnknownDefaultsToCommodity", func(t *testing.T) {
		assert.Equal(t, ClassCommodity, ClassOf("something_else"))
	})
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "BTC", displayName("crypto_btc_usd"))
	assert.Equal(t, "EUR/USD", displayName("forex_eur_usd"))
	assert.Equal(t, "ORO", displayName("commodities_oro"))
	assert.Equal(t, "SPY", displayName("SPY"))
}

func TestCommentary(t *testing.T) {
	t.Run("CryptoHighRisk", func(t *testing.T) {
		text := Commentary("crypto_btc_usd", "high", "RSI, MACD")
		assert.Contains(t, text, "Crypto analysis")
		assert.Contains(t, text, "BTC")
		assert.Contains(t, text, "RSI, MACD")
		assert.Contains(t, text, "Aggressive mode")
	})

	t.Run("ForexLowRisk", func(t *testing.T) {
		text := Commentary("forex_eur_usd", "low", "SMA")
		assert.Contains(t, text, "Forex analysis")
		assert.Contains(t, text, "EUR/USD")
		assert.Contains(t, text, "Conservative mode")
	})

	t.Run("UnknownRiskFallsBackToMedium", func(t *testing.T) {
		text := Commentary("indices_spx500", "reckless", "RSI")
		assert.Contains(t, text, "Equity analysis")
		assert.Contains(t, text, "Balanced mode")
	})

	t.Run("EmptyIndicators", func(t *testing.T) {
		text := Commentary("commodities_oro", "medium", "")
		assert.Contains(t, text, "your indicators")
	})
}
