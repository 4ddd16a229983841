package models

// Candle is a single OHLC bar. Sequences are always ordered oldest first.
type Candle struct {
	OpenTime int64   `json:"open_time"` // unix milliseconds
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}
