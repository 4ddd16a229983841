package paper

import "fmt"

// StartingBalance is the virtual cash every account begins with, in units
// of the account currency. The reconciler replays every trade log from
// this constant; it is not configurable.
const StartingBalance = 100_000.0

// DustThreshold is the net quantity below which a position is treated as
// zero. Replaying float arithmetic can leave tiny residue after a full
// sell-off and it must never surface as a holding.
const DustThreshold = 1e-5

// Reason classifies why an order was rejected.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonValidation           Reason = "validation"
	ReasonMarketUnavailable    Reason = "market_unavailable"
	ReasonInsufficientFunds    Reason = "insufficient_funds"
	ReasonInsufficientHoldings Reason = "insufficient_holdings"
	ReasonStoreFailure         Reason = "store_failure"
)

// Result is the structured outcome of an order attempt. Business
// rejections are not Go errors: every caller must branch on the reason
// instead of collapsing all failures into one.
type Result struct {
	OK         bool    `json:"success"`
	Reason     Reason  `json:"reason,omitempty"`
	Message    string  `json:"message"`
	NewBalance float64 `json:"new_balance,omitempty"`
}

func accepted(message string, newBalance float64) Result {
	return Result{OK: true, Message: message, NewBalance: newBalance}
}

func rejected(reason Reason, format string, args ...interface{}) Result {
	return Result{OK: false, Reason: reason, Message: fmt.Sprintf(format, args...)}
}
