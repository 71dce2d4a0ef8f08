package patterns

import (
	"stocksense/internal/analysis"
	"stocksense/internal/models"
)

// candleInfo is the static lookup entry for a candlestick pattern.
type candleInfo struct {
	label     string
	direction analysis.Direction
}

var singleCandlePatterns = map[string]candleInfo{
	"hammer":          {"Hammer", analysis.Bullish},
	"inverted_hammer": {"Inverted Hammer", analysis.Bullish},
	"hanging_man":     {"Hanging Man", analysis.Bearish},
	"shooting_star":   {"Shooting Star", analysis.Bearish},
	"doji":            {"Doji", analysis.Neutral},
	"dragonfly_doji":  {"Dragonfly Doji", analysis.Bullish},
	"gravestone_doji": {"Gravestone Doji", analysis.Bearish},
	"marubozu_bull":   {"Bullish Marubozu", analysis.Bullish},
	"marubozu_bear":   {"Bearish Marubozu", analysis.Bearish},
	"spinning_top":    {"Spinning Top", analysis.Neutral},
	"high_wave":       {"High Wave", analysis.Neutral},
}

// doubleCandlePatterns carry fixed confidences alongside direction.
var doubleCandlePatterns = map[string]struct {
	candleInfo
	confidence float64
}{
	"bullish_harami":      {candleInfo{"Bullish Harami", analysis.Bullish}, 53},
	"bearish_harami":      {candleInfo{"Bearish Harami", analysis.Bearish}, 53},
	"bullish_engulfing":   {candleInfo{"Bullish Engulfing", analysis.Bullish}, 63},
	"bearish_engulfing":   {candleInfo{"Bearish Engulfing", analysis.Bearish}, 63},
	"high_point_reversal": {candleInfo{"Matched-High Reversal", analysis.Bearish}, 64},
	"low_point_reversal":  {candleInfo{"Matched-Low Reversal", analysis.Bullish}, 64},
}

var multiCandlePatterns = map[string]struct {
	candleInfo
	confidence float64
}{
	"morning_star":         {candleInfo{"Morning Star", analysis.Bullish}, 70},
	"evening_star":         {candleInfo{"Evening Star", analysis.Bearish}, 70},
	"three_white_soldiers": {candleInfo{"Three White Soldiers", analysis.Bullish}, 75},
	"three_black_crows":    {candleInfo{"Three Black Crows", analysis.Bearish}, 75},
}

// CandlestickDetector detects single, double and triple candle patterns on
// the most recent bars of a series.
type CandlestickDetector struct {
	dojiThreshold float64 // body as a fraction of range below which a bar is a doji
	trendBand     float64 // close vs short SMA band for trend context
}

// NewCandlestickDetector creates a detector with default thresholds.
func NewCandlestickDetector() *CandlestickDetector {
	return &CandlestickDetector{
		dojiThreshold: 0.05,
		trendBand:     0.01,
	}
}

func (d *CandlestickDetector) Name() string {
	return "CandlestickDetector"
}

// Detect scans the tail of the series: single-candle shapes over the last
// 5 bars, double and triple formations over the last 3.
func (d *CandlestickDetector) Detect(candles []models.Candle) ([]analysis.Pattern, error) {
	if len(candles) == 0 {
		return nil, nil
	}
	f := computeFeatures(candles, d.dojiThreshold)

	var patterns []analysis.Pattern
	patterns = append(patterns, d.detectSingle(f)...)
	patterns = append(patterns, d.detectDouble(f)...)
	patterns = append(patterns, d.detectTriple(f)...)
	return patterns, nil
}

// Signal folds detected patterns into the common weighted result.
func (d *CandlestickDetector) Signal(candles []models.Candle) analysis.SignalResult {
	patterns, _ := d.Detect(candles)
	return analysis.WeightedSignal(patterns)
}

func (d *CandlestickDetector) detectSingle(f *candleFeatures) []analysis.Pattern {
	var patterns []analysis.Pattern
	n := len(f.close)
	if n < 5 {
		return patterns
	}

	start := n - 5
	if start < 1 {
		start = 1
	}
	for i := start; i < n; i++ {
		trend := d.trendContext(f, i)

		// Hammer: long lower shadow and a small body at the top after a downtrend.
		if trend == "down" && f.lowerShadow[i] > 2*f.body[i] &&
			f.upperShadow[i] < f.body[i]*0.3 && f.bodyRatio[i] < 0.4 {
			patterns = append(patterns, singlePattern("hammer", 65, i))
		}

		// Inverted hammer: long upper shadow after a downtrend.
		if trend == "down" && f.upperShadow[i] > 2*f.body[i] &&
			f.lowerShadow[i] < f.body[i]*0.3 && f.bodyRatio[i] < 0.4 {
			patterns = append(patterns, singlePattern("inverted_hammer", 60, i))
		}

		// Hanging man: hammer shape after an uptrend.
		if trend == "up" && f.lowerShadow[i] > 2*f.body[i] &&
			f.upperShadow[i] < f.body[i]*0.3 && f.bodyRatio[i] < 0.4 {
			patterns = append(patterns, singlePattern("hanging_man", 60, i))
		}

		// Shooting star: long upper shadow after an uptrend.
		if trend == "up" && f.upperShadow[i] > 2*f.body[i] &&
			f.lowerShadow[i] < f.body[i]*0.3 && f.bodyRatio[i] < 0.4 {
			patterns = append(patterns, singlePattern("shooting_star", 65, i))
		}

		// Doji family.
		if f.doji[i] && f.totalRange[i] > 0 {
			switch {
			case f.lowerShadow[i] > 3*f.upperShadow[i] && f.lowerShadow[i] > 0:
				patterns = append(patterns, singlePattern("dragonfly_doji", 60, i))
			case f.upperShadow[i] > 3*f.lowerShadow[i] && f.upperShadow[i] > 0:
				patterns = append(patterns, singlePattern("gravestone_doji", 60, i))
			default:
				patterns = append(patterns, singlePattern("doji", 50, i))
			}
		}

		// Marubozu: body dominates the range.
		if f.bodyRatio[i] > 0.9 && f.totalRange[i] > 0 {
			name := "marubozu_bear"
			if f.bullish[i] {
				name = "marubozu_bull"
			}
			patterns = append(patterns, singlePattern(name, 70, i))
		}

		// Spinning top: small body, shadows on both sides.
		if f.bodyRatio[i] > 0.1 && f.bodyRatio[i] < 0.3 &&
			f.upperShadow[i] > f.body[i] && f.lowerShadow[i] > f.body[i] {
			patterns = append(patterns, singlePattern("spinning_top", 40, i))
		}

		// High wave: tiny body, very long shadows on both sides.
		if f.bodyRatio[i] < 0.15 && f.upperShadow[i] > 2*f.body[i] &&
			f.lowerShadow[i] > 2*f.body[i] && f.totalRange[i] > 0 {
			patterns = append(patterns, singlePattern("high_wave", 45, i))
		}
	}
	return patterns
}

func (d *CandlestickDetector) detectDouble(f *candleFeatures) []analysis.Pattern {
	var patterns []analysis.Pattern
	n := len(f.close)
	if n < 2 {
		return patterns
	}

	start := n - 3
	if start < 1 {
		start = 1
	}
	for i := start; i < n; i++ {
		prev, curr := i-1, i

		// Bullish engulfing.
		if f.bearish[prev] && f.bullish[curr] &&
			f.open[curr] <= f.close[prev] && f.close[curr] >= f.open[prev] &&
			f.body[curr] > f.body[prev] {
			patterns = append(patterns, doublePattern("bullish_engulfing", i))
		}

		// Bearish engulfing.
		if f.bullish[prev] && f.bearish[curr] &&
			f.open[curr] >= f.close[prev] && f.close[curr] <= f.open[prev] &&
			f.body[curr] > f.body[prev] {
			patterns = append(patterns, doublePattern("bearish_engulfing", i))
		}

		// Bullish harami: small bull body inside the prior bear body.
		if f.bearish[prev] && f.bullish[curr] && f.body[curr] < f.body[prev] &&
			f.open[curr] > f.close[prev] && f.close[curr] < f.open[prev] {
			patterns = append(patterns, doublePattern("bullish_harami", i))
		}

		// Bearish harami.
		if f.bullish[prev] && f.bearish[curr] && f.body[curr] < f.body[prev] &&
			f.open[curr] < f.close[prev] && f.close[curr] > f.open[prev] {
			patterns = append(patterns, doublePattern("bearish_harami", i))
		}

		// Matched highs with opposite candle colors.
		if abs(f.high[prev]-f.high[curr])/max(f.high[prev], 0.01) < 0.005 &&
			f.bullish[prev] && f.bearish[curr] {
			patterns = append(patterns, doublePattern("high_point_reversal", i))
		}

		// Matched lows with opposite candle colors.
		if abs(f.low[prev]-f.low[curr])/max(f.low[prev], 0.01) < 0.005 &&
			f.bearish[prev] && f.bullish[curr] {
			patterns = append(patterns, doublePattern("low_point_reversal", i))
		}
	}
	return patterns
}

func (d *CandlestickDetector) detectTriple(f *candleFeatures) []analysis.Pattern {
	var patterns []analysis.Pattern
	n := len(f.close)
	if n < 3 {
		return patterns
	}

	start := n - 3
	if start < 2 {
		start = 2
	}
	for i := start; i < n; i++ {
		c1, c2, c3 := i-2, i-1, i

		// Morning star: strong bear, indecision, strong bull closing above
		// the midpoint of the first body.
		if f.bearish[c1] && f.bodyRatio[c1] > 0.5 && f.bodyRatio[c2] < 0.2 &&
			f.bullish[c3] && f.bodyRatio[c3] > 0.5 &&
			f.close[c3] > (f.open[c1]+f.close[c1])/2 {
			patterns = append(patterns, triplePattern("morning_star", i))
		}

		// Evening star.
		if f.bullish[c1] && f.bodyRatio[c1] > 0.5 && f.bodyRatio[c2] < 0.2 &&
			f.bearish[c3] && f.bodyRatio[c3] > 0.5 &&
			f.close[c3] < (f.open[c1]+f.close[c1])/2 {
			patterns = append(patterns, triplePattern("evening_star", i))
		}

		// Three white soldiers.
		if f.bullish[c1] && f.bullish[c2] && f.bullish[c3] &&
			f.close[c2] > f.close[c1] && f.close[c3] > f.close[c2] &&
			f.bodyRatio[c1] > 0.5 && f.bodyRatio[c2] > 0.5 && f.bodyRatio[c3] > 0.5 {
			patterns = append(patterns, triplePattern("three_white_soldiers", i))
		}

		// Three black crows.
		if f.bearish[c1] && f.bearish[c2] && f.bearish[c3] &&
			f.close[c2] < f.close[c1] && f.close[c3] < f.close[c2] &&
			f.bodyRatio[c1] > 0.5 && f.bodyRatio[c2] > 0.5 && f.bodyRatio[c3] > 0.5 {
			patterns = append(patterns, triplePattern("three_black_crows", i))
		}
	}
	return patterns
}

// trendContext classifies the bars preceding index i against their own mean
// close: the last prior close above the band is "up", below is "down".
func (d *CandlestickDetector) trendContext(f *candleFeatures, i int) string {
	lo := i - 5
	if lo < 0 {
		lo = 0
	}
	if i-lo < 2 {
		return "neutral"
	}
	sma := mean(f.close[lo:i])
	last := f.close[i-1]
	if last > sma*(1+d.trendBand) {
		return "up"
	}
	if last < sma*(1-d.trendBand) {
		return "down"
	}
	return "neutral"
}

func singlePattern(name string, confidence float64, idx int) analysis.Pattern {
	info := singleCandlePatterns[name]
	return analysis.Pattern{
		Name:       name,
		Label:      info.label,
		Type:       analysis.PatternSingleCandle,
		Direction:  info.direction,
		Confidence: confidence,
		BarIndex:   idx,
	}
}

func doublePattern(name string, idx int) analysis.Pattern {
	info := doubleCandlePatterns[name]
	return analysis.Pattern{
		Name:       name,
		Label:      info.label,
		Type:       analysis.PatternDoubleCandle,
		Direction:  info.direction,
		Confidence: info.confidence,
		BarIndex:   idx,
	}
}

func triplePattern(name string, idx int) analysis.Pattern {
	info := multiCandlePatterns[name]
	return analysis.Pattern{
		Name:       name,
		Label:      info.label,
		Type:       analysis.PatternMultiCandle,
		Direction:  info.direction,
		Confidence: info.confidence,
		BarIndex:   idx,
	}
}
