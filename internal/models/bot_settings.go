package models

// BotSettings configures the automated strategy check for one user.
type BotSettings struct {
	SelectedAsset    string `json:"selected_asset"`
	RiskTolerance    string `json:"risk_tolerance"`
	ActiveIndicators string `json:"active_indicators"`
	TradingWindow    string `json:"trading_window"` // "HH:MM-HH:MM"
	IsActive         bool   `json:"is_active"`
}
