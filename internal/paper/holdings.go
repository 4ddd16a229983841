package paper

import "paper-trader-go/internal/models"

// Position is the derived inventory for one symbol. CostBasis is the
// total cost of the units currently held under weighted-average costing.
// Positions are computed on demand from the trade log and never stored:
// a persisted copy would be a second source of truth that can drift.
type Position struct {
	Quantity  float64
	CostBasis float64
}

// HoldingsFor replays the trade log filtered by symbol and returns the net
// quantity held, clamped at zero. The clamp protects against float residue
// producing a tiny negative position after a full sell-off.
func HoldingsFor(trades []models.TradeRecord, symbol string) float64 {
	var qty float64
	for _, t := range trades {
		if t.AssetSymbol != symbol {
			continue
		}
		switch t.Kind {
		case models.SideBuy:
			qty += t.Quantity
		case models.SideSell:
			qty -= t.Quantity
		}
	}
	if qty < 0 {
		return 0
	}
	return qty
}

// AllHoldings replays the trade log once and derives every position with
// its weighted-average cost basis. A BUY adds quantity*price to the basis;
// a SELL removes the sold share of the average cost, so the average price
// of the remaining units is preserved (not FIFO/LIFO).
func AllHoldings(trades []models.TradeRecord) map[string]Position {
	holdings := make(map[string]Position)

	for _, t := range trades {
		pos := holdings[t.AssetSymbol]
		switch t.Kind {
		case models.SideBuy:
			pos.Quantity += t.Quantity
			pos.CostBasis += t.Quantity * t.EntryPrice
		case models.SideSell:
			if pos.Quantity > 0 {
				avgCost := pos.CostBasis / pos.Quantity
				pos.CostBasis -= t.Quantity * avgCost
			}
			pos.Quantity -= t.Quantity
		}
		if pos.Quantity <= 0 {
			pos.Quantity = 0
			pos.CostBasis = 0
		}
		holdings[t.AssetSymbol] = pos
	}

	return holdings
}
