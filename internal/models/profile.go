package models

// UserProfile is the per-user profile record held by the ledger store.
// VirtualBalance is a read cache of the authoritative balance; only the
// order executor and the reconciler may write it.
type UserProfile struct {
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	RiskTolerance   string  `json:"risk_tolerance"`
	ExperienceLevel string  `json:"experience_level"`
	PreferredMarket string  `json:"preferred_market"`
	VirtualBalance  float64 `json:"virtual_balance"`
}
