// Package models provides domain models for the analysis engine.
package models

import (
	"encoding/json"
	"math"
	"time"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Valid reports whether the candle carries usable price data.
// Prices must be positive finite numbers.
func (c Candle) Valid() bool {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return c.Volume >= 0
}

// Fundamentals holds optional fundamental data for a symbol.
// Any zero-valued field is treated as absent.
type Fundamentals struct {
	ShortName           string   `json:"short_name,omitempty"`
	Sector              string   `json:"sector,omitempty"`
	TargetMeanPrice     float64  `json:"target_mean_price,omitempty"`
	RecommendationKey   string   `json:"recommendation_key,omitempty"`
	EarningsGrowth      *float64 `json:"earnings_growth,omitempty"`
	ShortPercentOfFloat *float64 `json:"short_percent_of_float,omitempty"`
}

// SavedAnalysis is a persisted scoring result for later review.
type SavedAnalysis struct {
	ID         string
	Symbol     string
	Signal     string
	Grade      string
	Confidence float64
	Result     json.RawMessage
	CreatedAt  time.Time
}
