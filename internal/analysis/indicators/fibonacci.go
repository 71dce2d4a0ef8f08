package indicators

import (
	"stocksense/internal/models"
)

// FibLevels holds Fibonacci retracement and extension levels derived from
// the most recent swing high and low. Levels is empty when no usable swing
// exists; keys are the ratio names ("0.5", "ext_1.618", ...).
type FibLevels struct {
	SwingHigh float64            `json:"swing_high"`
	SwingLow  float64            `json:"swing_low"`
	Levels    map[string]float64 `json:"levels"`
}

// fibRetracements are the retracement fractions measured down from the
// swing high.
var fibRetracements = []struct {
	Name  string
	Ratio float64
}{
	{"0.236", 0.236},
	{"0.382", 0.382},
	{"0.5", 0.5},
	{"0.618", 0.618},
	{"0.786", 0.786},
}

// Fibonacci computes retracement and extension levels. Swing points come
// from local extrema with order = min(5, max(2, n/10)); when no extrema
// exist the global high/low stand in.
func Fibonacci(candles []models.Candle) FibLevels {
	n := len(candles)
	order := n / 10
	if order < 2 {
		order = 2
	}
	if order > 5 {
		order = 5
	}
	if n < order*2+1 {
		return FibLevels{Levels: map[string]float64{}}
	}

	highs := highPrices(candles)
	lows := lowPrices(candles)

	peakIdx := LocalMaxima(highs, order)
	troughIdx := LocalMinima(lows, order)

	swingHigh := highest(highs)
	if len(peakIdx) > 0 {
		swingHigh = highs[peakIdx[0]]
		for _, i := range peakIdx[1:] {
			if highs[i] > swingHigh {
				swingHigh = highs[i]
			}
		}
	}
	swingLow := lowest(lows)
	if len(troughIdx) > 0 {
		swingLow = lows[troughIdx[0]]
		for _, i := range troughIdx[1:] {
			if lows[i] < swingLow {
				swingLow = lows[i]
			}
		}
	}

	diff := swingHigh - swingLow
	if diff <= 0 {
		return FibLevels{
			SwingHigh: round2(swingHigh),
			SwingLow:  round2(swingLow),
			Levels:    map[string]float64{},
		}
	}

	levels := map[string]float64{
		"0.0": round2(swingHigh),
		"1.0": round2(swingLow),
	}
	for _, r := range fibRetracements {
		levels[r.Name] = round2(swingHigh - diff*r.Ratio)
	}
	levels["ext_1.272"] = round2(swingLow + diff*1.272)
	levels["ext_1.618"] = round2(swingLow + diff*1.618)

	return FibLevels{
		SwingHigh: round2(swingHigh),
		SwingLow:  round2(swingLow),
		Levels:    levels,
	}
}
