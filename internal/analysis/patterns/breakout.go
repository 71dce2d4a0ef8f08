package patterns

import (
	"stocksense/internal/analysis"
	"stocksense/internal/analysis/indicators"
	"stocksense/internal/models"
)

// BreakoutDetector detects breakout-then-pullback wave patterns: a close
// pushing past a prior peak, followed by a partial retrace that holds above
// the broken level.
type BreakoutDetector struct {
	order    int // extrema confirmation window
	lookback int // bars of history examined
	minBars  int // minimum series length
}

// NewBreakoutDetector creates a detector with default parameters.
func NewBreakoutDetector() *BreakoutDetector {
	return &BreakoutDetector{order: 5, lookback: 60, minBars: 30}
}

func (d *BreakoutDetector) Name() string {
	return "BreakoutDetector"
}

// Detect scans the recent window for breakouts over earlier peaks followed
// by a healthy pullback (10-60% retrace holding above the broken level).
func (d *BreakoutDetector) Detect(candles []models.Candle) ([]analysis.Pattern, error) {
	n := len(candles)
	if n < d.minBars {
		return nil, nil
	}

	lookback := d.lookback
	if lookback > n {
		lookback = n
	}
	offset := n - lookback

	recent := make([]float64, lookback)
	volumes := make([]float64, lookback)
	for i := 0; i < lookback; i++ {
		recent[i] = candles[offset+i].Close
		volumes[i] = float64(candles[offset+i].Volume)
	}

	peaks := indicators.LocalMaxima(recent, d.order)
	troughs := indicators.LocalMinima(recent, d.order)
	if len(peaks) < 2 || len(troughs) < 1 {
		return nil, nil
	}

	avgVol := mean(volumes)
	current := recent[len(recent)-1]

	var patterns []analysis.Pattern
	for i := 1; i < len(peaks); i++ {
		breakoutLevel := recent[peaks[i-1]]
		peakPrice := recent[peaks[i]]
		if peakPrice <= breakoutLevel*1.02 {
			continue
		}

		postBreakout := recent[peaks[i]:]
		if len(postBreakout) < 3 {
			continue
		}
		pullbackLow := lowestIn(postBreakout, 0, len(postBreakout))
		pullbackPct := (peakPrice - pullbackLow) / peakPrice

		if pullbackPct <= 0.1 || pullbackPct >= 0.6 || current <= breakoutLevel {
			continue
		}

		breakoutVol := volumes[peaks[i]]
		volumeConfirmed := avgVol > 0 && breakoutVol > avgVol*1.5

		confidence := 60.0
		if volumeConfirmed {
			confidence += 15
		}
		if pullbackPct < 0.38 {
			confidence += 10
		}
		if current > peakPrice*0.98 {
			confidence += 10
		}
		if confidence > 95 {
			confidence = 95
		}

		level := round2(breakoutLevel)
		low := round2(pullbackLow)
		pct := round1(pullbackPct * 100)
		patterns = append(patterns, analysis.Pattern{
			Name:            "breakout_pullback",
			Label:           "Breakout Pullback",
			Type:            analysis.PatternChart,
			Direction:       analysis.Bullish,
			Confidence:      confidence,
			BarIndex:        offset + peaks[i],
			BreakoutLevel:   &level,
			PullbackLow:     &low,
			PullbackPct:     &pct,
			VolumeConfirmed: volumeConfirmed,
		})
	}
	return patterns, nil
}

// Signal takes the highest-confidence pattern and signs its strength by
// direction.
func (d *BreakoutDetector) Signal(candles []models.Candle) analysis.SignalResult {
	patterns, _ := d.Detect(candles)
	if len(patterns) == 0 {
		return analysis.Hold()
	}

	best := patterns[0]
	for _, p := range patterns[1:] {
		if p.Confidence > best.Confidence {
			best = p
		}
	}

	strength := best.Confidence / 100
	if best.Direction == analysis.Bearish {
		strength = -strength
	}

	signal := analysis.SignalHold
	if strength > 0.2 {
		signal = analysis.SignalBuy
	} else if strength < -0.2 {
		signal = analysis.SignalSell
	}

	return analysis.SignalResult{
		Signal:   signal,
		Strength: round4(strength),
		Patterns: patterns,
	}
}
