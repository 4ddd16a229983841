package analysis

import (
	"fmt"
	"strings"
)

// AssetClass groups assets that share a commentary template.
type AssetClass string

const (
	ClassCrypto    AssetClass = "crypto"
	ClassForex     AssetClass = "forex"
	ClassStock     AssetClass = "stock"
	ClassCommodity AssetClass = "commodity"
)

// classTemplate holds the per-class text parameters. The behavioral
// difference between asset classes is pure text substitution, so a lookup
// table replaces any per-class type hierarchy.
type classTemplate struct {
	Heading  string
	Template string // fmt template with (display name, indicators)
}

var classTable = map[AssetClass]classTemplate{
	ClassCrypto: {
		Heading: "Crypto analysis",
		Template: "%s trades around the clock and volatility is currently elevated. " +
			"On-chain flows show large-holder movement; filter your indicators (%s) with volume before acting.",
	},
	ClassForex: {
		Heading: "Forex analysis",
		Template: "%s is driven by the active trading session. " +
			"Check the economic calendar for high-impact releases before trusting %s signals.",
	},
	ClassStock: {
		Heading: "Equity analysis",
		Template: "%s is reacting to quarterly earnings flow. " +
			"Institutional volume is the confirming signal here; %s alone can diverge near reports.",
	},
	ClassCommodity: {
		Heading: "Commodity analysis",
		Template: "%s behaves as a safe-haven asset with an inverse dollar correlation. " +
			"Watch macro supply and demand zones alongside %s.",
	},
}

// riskAdvice maps a risk tolerance to position-management guidance.
var riskAdvice = map[string]string{
	"high":   "Aggressive mode: use tight stop losses (max 2%) and look for reward ratios of 1:3.",
	"medium": "Balanced mode: wait for two confirming indicators and risk at most 1% per trade.",
	"low":    "Conservative mode: buy pullbacks into weekly support and prioritize capital preservation.",
}

// ClassOf derives the asset class from an internal asset identifier.
// Unrecognized identifiers fall back to commodity, mirroring the routing
// table's totality.
func ClassOf(assetID string) AssetClass {
	switch {
	case strings.HasPrefix(assetID, "crypto"):
		return ClassCrypto
	case strings.HasPrefix(assetID, "forex"):
		return ClassForex
	case strings.HasPrefix(assetID, "stock"), strings.HasPrefix(assetID, "indices"), strings.HasPrefix(assetID, "index"):
		return ClassStock
	default:
		return ClassCommodity
	}
}

// displayName extracts a readable asset name from the identifier, e.g.
// "crypto_btc_usd" -> "BTC", "forex_eur_usd" -> "EUR/USD".
func displayName(assetID string) string {
	parts := strings.Split(assetID, "_")
	switch ClassOf(assetID) {
	case ClassForex:
		if len(parts) > 2 {
			return strings.ToUpper(parts[1]) + "/" + strings.ToUpper(parts[2])
		}
	default:
		if len(parts) > 1 {
			return strings.ToUpper(parts[1])
		}
	}
	return strings.ToUpper(assetID)
}

// Commentary renders the canned analysis text for an asset together with
// risk-tolerance guidance.
func Commentary(assetID, riskTolerance, indicators string) string {
	class := ClassOf(assetID)
	tpl := classTable[class]
	if indicators == "" {
		indicators = "your indicators"
	}

	body := fmt.Sprintf(tpl.Template, displayName(assetID), indicators)

	advice, ok := riskAdvice[strings.ToLower(riskTolerance)]
	if !ok {
		advice = riskAdvice["medium"]
	}

	return fmt.Sprintf("%s: %s\n%s", tpl.Heading, body, advice)
}
