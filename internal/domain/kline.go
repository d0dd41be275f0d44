package domain

import "time"

// Kline is one OHLC bar of the underlying, used for volatility estimation.
type Kline struct {
	OpenTime  time.Time
	CloseTime time.Time
	Symbol    string
	Interval  string // e.g., "1h", "1d"
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
