package models

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TimestampLayout is the sortable layout used for trade timestamps.
// Lexicographic order equals chronological order, which the replay
// logic relies on.
const TimestampLayout = "2006-01-02 15:04:05"

// TradeRecord is one immutable entry in a user's trade log.
type TradeRecord struct {
	Key              string  `json:"-"` // assigned by the ledger store
	Kind             Side    `json:"kind"`
	AssetSymbol      string  `json:"asset_symbol"`
	EntryPrice       float64 `json:"entry_price"`
	Quantity         float64 `json:"quantity"` // always positive
	TotalValue       float64 `json:"total_value"`
	ResultingBalance float64 `json:"resulting_balance"`
	Timestamp        string  `json:"timestamp"`
	Note             string  `json:"note,omitempty"`
}
