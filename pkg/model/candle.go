package model

import "time"

// Candle represents a single daily OHLCV row of an asset
type Candle struct {
	Symbol   string    `json:"symbol"`
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close,omitempty"` // optional: split/dividend adjusted close
	Volume   float64   `json:"volume"`
}

// Returns calculates the percentage return of this candle
func (c *Candle) Returns() float64 {
	if c.Open == 0 {
		return 0
	}
	return (c.Close - c.Open) / c.Open
}
