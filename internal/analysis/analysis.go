// Package analysis provides technical analysis functionality including indicators,
// pattern detection, and signal scoring.
package analysis

import (
	"math"

	"stocksense/internal/models"
)

// Signal is a trading signal direction.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// PatternType classifies how many bars a pattern spans.
type PatternType string

const (
	PatternSingleCandle PatternType = "single_candle"
	PatternDoubleCandle PatternType = "double_candle"
	PatternMultiCandle  PatternType = "multi_candle"
	PatternChart        PatternType = "chart_pattern"
)

// Direction is the expected price direction of a pattern.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// Pattern represents a detected chart or candlestick pattern.
// Confidence is a fixed or formula-derived score in [0, 100].
type Pattern struct {
	Name            string      `json:"name"`
	Label           string      `json:"label"`
	Type            PatternType `json:"type"`
	Direction       Direction   `json:"direction"`
	Confidence      float64     `json:"confidence"`
	BarIndex        int         `json:"bar_index"`
	Action          string      `json:"action,omitempty"`
	TargetPrice     *float64    `json:"target_price,omitempty"`
	BreakoutLevel   *float64    `json:"breakout_level,omitempty"`
	PullbackLow     *float64    `json:"pullback_low,omitempty"`
	PullbackPct     *float64    `json:"pullback_pct,omitempty"`
	VolumeConfirmed bool        `json:"volume_confirmed,omitempty"`
}

// SignalResult is the common detector output contract. Strength sign encodes
// direction, magnitude encodes conviction, always within [-1, 1].
type SignalResult struct {
	Signal   Signal    `json:"signal"`
	Strength float64   `json:"strength"`
	Patterns []Pattern `json:"patterns"`
}

// Hold returns the neutral result used when a detector has nothing to say.
func Hold() SignalResult {
	return SignalResult{Signal: SignalHold, Strength: 0, Patterns: []Pattern{}}
}

// LevelType represents the role of a price level.
type LevelType string

const (
	LevelSupport    LevelType = "support"
	LevelResistance LevelType = "resistance"
)

// Level is a clustered horizontal price level. Touches is the number of
// extrema that fell inside the cluster.
type Level struct {
	Price   float64   `json:"price"`
	Touches int       `json:"touch_count"`
	Type    LevelType `json:"level_type"`
}

// Detector is implemented by all pattern detectors.
type Detector interface {
	Name() string
	Detect(candles []models.Candle) ([]Pattern, error)
}

// WeightedSignal folds a pattern list into a single signed strength: each
// pattern contributes confidence/100 signed by its direction, the sum is
// normalized by total weight and thresholded at +/-0.2.
func WeightedSignal(patterns []Pattern) SignalResult {
	if len(patterns) == 0 {
		return Hold()
	}

	var score, totalWeight float64
	for _, p := range patterns {
		weight := p.Confidence / 100
		switch p.Direction {
		case Bullish:
			score += weight
		case Bearish:
			score -= weight
		}
		totalWeight += weight
	}

	var normalized float64
	if totalWeight > 0 {
		normalized = score / totalWeight
	}

	signal := SignalHold
	if normalized > 0.2 {
		signal = SignalBuy
	} else if normalized < -0.2 {
		signal = SignalSell
	}

	return SignalResult{
		Signal:   signal,
		Strength: Round4(normalized),
		Patterns: patterns,
	}
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places, the precision used for prices.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to four decimal places, the precision used for strengths.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
