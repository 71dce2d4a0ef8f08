// Package patterns provides candlestick, chart, level, volume and breakout
// detectors over OHLCV series.
package patterns

import (
	"math"

	"stocksense/internal/models"
)

// candleFeatures holds per-bar derived values computed once per detector
// invocation. bodyRatio is NaN when the bar has zero range, which makes all
// threshold comparisons against it false.
type candleFeatures struct {
	open, high, low, close  []float64
	body, upperShadow       []float64
	lowerShadow, totalRange []float64
	bodyRatio               []float64
	bullish, bearish, doji  []bool
}

func computeFeatures(candles []models.Candle, dojiThreshold float64) *candleFeatures {
	n := len(candles)
	f := &candleFeatures{
		open:        make([]float64, n),
		high:        make([]float64, n),
		low:         make([]float64, n),
		close:       make([]float64, n),
		body:        make([]float64, n),
		upperShadow: make([]float64, n),
		lowerShadow: make([]float64, n),
		totalRange:  make([]float64, n),
		bodyRatio:   make([]float64, n),
		bullish:     make([]bool, n),
		bearish:     make([]bool, n),
		doji:        make([]bool, n),
	}
	for i, c := range candles {
		f.open[i] = c.Open
		f.high[i] = c.High
		f.low[i] = c.Low
		f.close[i] = c.Close
		f.body[i] = abs(c.Close - c.Open)
		f.upperShadow[i] = c.High - max(c.Open, c.Close)
		f.lowerShadow[i] = min(c.Open, c.Close) - c.Low
		f.totalRange[i] = c.High - c.Low
		if f.totalRange[i] == 0 {
			f.bodyRatio[i] = math.NaN()
		} else {
			f.bodyRatio[i] = f.body[i] / f.totalRange[i]
		}
		f.bullish[i] = c.Close > c.Open
		f.bearish[i] = c.Close < c.Open
		f.doji[i] = f.bodyRatio[i] < dojiThreshold
	}
	return f
}

// max returns the maximum of two float64 values.
func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// min returns the minimum of two float64 values.
func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// abs returns the absolute value of a float64.
func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// mean calculates the arithmetic mean of a slice of float64.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round4 rounds to four decimal places.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
