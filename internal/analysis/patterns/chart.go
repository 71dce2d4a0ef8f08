package patterns

import (
	"stocksense/internal/analysis"
	"stocksense/internal/analysis/indicators"
	"stocksense/internal/models"
)

// chartInfo is the static lookup entry for a chart pattern.
type chartInfo struct {
	label      string
	direction  analysis.Direction
	confidence float64
	action     string
}

var chartPatternTable = map[string]chartInfo{
	// Bearish formations.
	"double_top":         {"Double Top", analysis.Bearish, 100, "brace for a sharp drop"},
	"triple_top":         {"Triple Top", analysis.Bearish, 90, "brace for a sharp drop"},
	"bear_flag":          {"Bear Flag", analysis.Bearish, 80, "sell quickly"},
	"rising_wedge":       {"Rising Wedge", analysis.Bearish, 75, "sell quickly"},
	"descending_diamond": {"Descending Diamond", analysis.Bearish, 65, "slow decline ahead"},
	"head_shoulders":     {"Head and Shoulders", analysis.Bearish, 85, "sell quickly"},
	"inverse_v":          {"Inverse V Reversal", analysis.Bearish, 70, "sell quickly"},
	"three_peaks_top":    {"Three-Strikes Top", analysis.Bearish, 80, "sell quickly"},
	// Neutral formations.
	"symmetrical_triangle": {"Symmetrical Triangle", analysis.Neutral, 50, "stay out"},
	"box_range":            {"Box Range", analysis.Neutral, 50, "stay out"},
	// Bullish formations.
	"ascending_triangle":     {"Ascending Triangle", analysis.Bullish, 65, "buy quickly"},
	"inverse_head_shoulders": {"Inverse Head and Shoulders", analysis.Bullish, 65, "buy quickly"},
	"bull_flag":              {"Bull Flag", analysis.Bullish, 80, "buy quickly"},
	"ascending_wedge":        {"Ascending Wedge", analysis.Bullish, 100, "brace for a sharp rally"},
	"double_bottom":          {"Double Bottom", analysis.Bullish, 90, "brace for a sharp rally"},
	"triple_bottom":          {"Triple Bottom", analysis.Bullish, 95, "brace for a sharp rally"},
}

// ChartPatternDetector detects multi-bar geometric formations from local
// price extrema.
type ChartPatternDetector struct {
	order int // bars on each side for extrema confirmation
}

// NewChartPatternDetector creates a detector with the default extrema order.
func NewChartPatternDetector() *ChartPatternDetector {
	return &ChartPatternDetector{order: 5}
}

// NewChartPatternDetectorWith creates a detector with an explicit extrema
// order. Values below 1 fall back to the default.
func NewChartPatternDetectorWith(order int) *ChartPatternDetector {
	if order < 1 {
		order = 5
	}
	return &ChartPatternDetector{order: order}
}

func (d *ChartPatternDetector) Name() string {
	return "ChartPatternDetector"
}

// ChartSignal is the chart detector's aggregate output. TargetPrice carries
// the first detected pattern's projected target, when one exists.
type ChartSignal struct {
	analysis.SignalResult
	TargetPrice *float64 `json:"target_price"`
}

// chartSeries holds the extrema context shared by the individual detectors.
type chartSeries struct {
	close, high, low   []float64
	peakIdx, troughIdx []int
	peaks, troughs     []float64
}

func (d *ChartPatternDetector) series(candles []models.Candle) *chartSeries {
	s := &chartSeries{}
	s.close = make([]float64, len(candles))
	s.high = make([]float64, len(candles))
	s.low = make([]float64, len(candles))
	for i, c := range candles {
		s.close[i] = c.Close
		s.high[i] = c.High
		s.low[i] = c.Low
	}
	s.peakIdx = indicators.LocalMaxima(s.high, d.order)
	s.troughIdx = indicators.LocalMinima(s.low, d.order)
	for _, i := range s.peakIdx {
		s.peaks = append(s.peaks, s.high[i])
	}
	for _, i := range s.troughIdx {
		s.troughs = append(s.troughs, s.low[i])
	}
	return s
}

// Detect runs every chart formation detector over the series.
func (d *ChartPatternDetector) Detect(candles []models.Candle) ([]analysis.Pattern, error) {
	if len(candles) == 0 {
		return nil, nil
	}
	s := d.series(candles)

	var patterns []analysis.Pattern
	patterns = append(patterns, d.detectDoubleTop(s)...)
	patterns = append(patterns, d.detectDoubleBottom(s)...)
	patterns = append(patterns, d.detectTripleTop(s)...)
	patterns = append(patterns, d.detectTripleBottom(s)...)
	patterns = append(patterns, d.detectHeadShoulders(s)...)
	patterns = append(patterns, d.detectInverseHeadShoulders(s)...)
	patterns = append(patterns, d.detectAscendingTriangle(s)...)
	patterns = append(patterns, d.detectSymmetricalTriangle(s)...)
	patterns = append(patterns, d.detectBullFlag(s)...)
	patterns = append(patterns, d.detectBearFlag(s)...)
	patterns = append(patterns, d.detectRisingWedge(s)...)
	patterns = append(patterns, d.detectBoxRange(s)...)
	return patterns, nil
}

// Signal folds detected patterns into the weighted result and surfaces the
// first projected target.
func (d *ChartPatternDetector) Signal(candles []models.Candle) ChartSignal {
	patterns, _ := d.Detect(candles)
	result := analysis.WeightedSignal(patterns)

	var target *float64
	for _, p := range patterns {
		if p.TargetPrice != nil {
			target = p.TargetPrice
			break
		}
	}
	return ChartSignal{SignalResult: result, TargetPrice: target}
}

// detectDoubleTop finds two peaks within 2% whose neckline (lowest low
// between them) the current close has already broken. The target projects
// the peak-to-neckline height below the neckline.
func (d *ChartPatternDetector) detectDoubleTop(s *chartSeries) []analysis.Pattern {
	var out []analysis.Pattern
	for i := 0; i+1 < len(s.peaks); i++ {
		p1, p2 := s.peaks[i], s.peaks[i+1]
		if abs(p1-p2) >= p1*0.02 {
			continue
		}
		idx1, idx2 := s.peakIdx[i], s.peakIdx[i+1]
		neckline := lowestIn(s.low, idx1, idx2+1)
		if s.close[len(s.close)-1] < neckline {
			target := neckline - (max(p1, p2) - neckline)
			out = append(out, chartPattern("double_top", idx2, &target))
		}
	}
	return out
}

func (d *ChartPatternDetector) detectDoubleBottom(s *chartSeries) []analysis.Pattern {
	var out []analysis.Pattern
	for i := 0; i+1 < len(s.troughs); i++ {
		t1, t2 := s.troughs[i], s.troughs[i+1]
		if abs(t1-t2) >= t1*0.02 {
			continue
		}
		idx1, idx2 := s.troughIdx[i], s.troughIdx[i+1]
		neckline := highestIn(s.high, idx1, idx2+1)
		if s.close[len(s.close)-1] > neckline {
			target := neckline + (neckline - min(t1, t2))
			out = append(out, chartPattern("double_bottom", idx2, &target))
		}
	}
	return out
}

// detectTripleTop finds three consecutive peaks within 2.5% of their mean.
func (d *ChartPatternDetector) detectTripleTop(s *chartSeries) []analysis.Pattern {
	var out []analysis.Pattern
	for i := 0; i+2 < len(s.peaks); i++ {
		p1, p2, p3 := s.peaks[i], s.peaks[i+1], s.peaks[i+2]
		avg := (p1 + p2 + p3) / 3
		tol := avg * 0.025
		if abs(p1-avg) < tol && abs(p2-avg) < tol && abs(p3-avg) < tol {
			out = append(out, chartPattern("triple_top", s.peakIdx[i+2], nil))
		}
	}
	return out
}

func (d *ChartPatternDetector) detectTripleBottom(s *chartSeries) []analysis.Pattern {
	var out []analysis.Pattern
	for i := 0; i+2 < len(s.troughs); i++ {
		t1, t2, t3 := s.troughs[i], s.troughs[i+1], s.troughs[i+2]
		avg := (t1 + t2 + t3) / 3
		tol := avg * 0.025
		if abs(t1-avg) < tol && abs(t2-avg) < tol && abs(t3-avg) < tol {
			out = append(out, chartPattern("triple_bottom", s.troughIdx[i+2], nil))
		}
	}
	return out
}

// detectHeadShoulders requires the middle peak above both neighbors and the
// outer shoulders within 5% of each other.
func (d *ChartPatternDetector) detectHeadShoulders(s *chartSeries) []analysis.Pattern {
	var out []analysis.Pattern
	for i := 0; i+2 < len(s.peaks); i++ {
		left, head, right := s.peaks[i], s.peaks[i+1], s.peaks[i+2]
		if head > left && head > right {
			if abs(left-right)/max(left, right) < 0.05 {
				out = append(out, chartPattern("head_shoulders", s.peakIdx[i+2], nil))
			}
		}
	}
	return out
}

func (d *ChartPatternDetector) detectInverseHeadShoulders(s *chartSeries) []analysis.Pattern {
	var out []analysis.Pattern
	for i := 0; i+2 < len(s.troughs); i++ {
		left, head, right := s.troughs[i], s.troughs[i+1], s.troughs[i+2]
		if head < left && head < right {
			if abs(left-right)/max(left, right) < 0.05 {
				out = append(out, chartPattern("inverse_head_shoulders", s.troughIdx[i+2], nil))
			}
		}
	}
	return out
}

// detectAscendingTriangle: flat peak line, rising trough line, judged
// against the average bar range.
func (d *ChartPatternDetector) detectAscendingTriangle(s *chartSeries) []analysis.Pattern {
	if len(s.peaks) < 2 || len(s.troughs) < 2 {
		return nil
	}
	peakSlope := indicators.Slope(s.peaks)
	troughSlope := indicators.Slope(s.troughs)
	avgRange := avgBarRange(s)
	if abs(peakSlope) < avgRange*0.05 && troughSlope > avgRange*0.02 {
		return []analysis.Pattern{chartPattern("ascending_triangle", len(s.close)-1, nil)}
	}
	return nil
}

func (d *ChartPatternDetector) detectSymmetricalTriangle(s *chartSeries) []analysis.Pattern {
	if len(s.peaks) < 3 || len(s.troughs) < 3 {
		return nil
	}
	peakSlope := indicators.Slope(s.peaks)
	troughSlope := indicators.Slope(s.troughs)
	if peakSlope < 0 && troughSlope > 0 {
		return []analysis.Pattern{chartPattern("symmetrical_triangle", len(s.close)-1, nil)}
	}
	return nil
}

// detectBullFlag: a pole rising more than 5% in the first half of the
// window followed by a shallow pullback in the second half.
func (d *ChartPatternDetector) detectBullFlag(s *chartSeries) []analysis.Pattern {
	n := len(s.close)
	if n < 20 {
		return nil
	}
	poleReturn, flagReturn := flagReturns(s.close)
	if poleReturn > 0.05 && flagReturn > -0.05 && flagReturn < 0.01 {
		return []analysis.Pattern{chartPattern("bull_flag", n-1, nil)}
	}
	return nil
}

func (d *ChartPatternDetector) detectBearFlag(s *chartSeries) []analysis.Pattern {
	n := len(s.close)
	if n < 20 {
		return nil
	}
	poleReturn, flagReturn := flagReturns(s.close)
	if poleReturn < -0.05 && flagReturn > -0.01 && flagReturn < 0.05 {
		return []analysis.Pattern{chartPattern("bear_flag", n-1, nil)}
	}
	return nil
}

// detectRisingWedge: both boundary lines rising with the lower line rising
// faster, a converging upward channel.
func (d *ChartPatternDetector) detectRisingWedge(s *chartSeries) []analysis.Pattern {
	if len(s.peaks) < 3 || len(s.troughs) < 3 {
		return nil
	}
	peakSlope := indicators.Slope(s.peaks)
	troughSlope := indicators.Slope(s.troughs)
	if peakSlope > 0 && troughSlope > 0 && troughSlope > peakSlope {
		return []analysis.Pattern{chartPattern("rising_wedge", len(s.close)-1, nil)}
	}
	return nil
}

// detectBoxRange: the last 20 closes span less than 6% of their mean.
func (d *ChartPatternDetector) detectBoxRange(s *chartSeries) []analysis.Pattern {
	n := len(s.close)
	if n < 20 {
		return nil
	}
	recent := s.close[n-20:]
	m := mean(recent)
	if m <= 0 {
		return nil
	}
	span := (highestIn(recent, 0, len(recent)) - lowestIn(recent, 0, len(recent))) / m
	if span < 0.06 {
		return []analysis.Pattern{chartPattern("box_range", n-1, nil)}
	}
	return nil
}

func chartPattern(name string, barIndex int, target *float64) analysis.Pattern {
	info := chartPatternTable[name]
	p := analysis.Pattern{
		Name:       name,
		Label:      info.label,
		Type:       analysis.PatternChart,
		Direction:  info.direction,
		Confidence: info.confidence,
		Action:     info.action,
		BarIndex:   barIndex,
	}
	if target != nil {
		t := round2(*target)
		p.TargetPrice = &t
	}
	return p
}

// flagReturns splits closes into pole and flag halves and returns the
// simple return of each half.
func flagReturns(closes []float64) (pole, flag float64) {
	half := len(closes) / 2
	p := closes[:half]
	f := closes[half:]
	pole = (p[len(p)-1] - p[0]) / max(p[0], 0.01)
	flag = (f[len(f)-1] - f[0]) / max(f[0], 0.01)
	return pole, flag
}

func avgBarRange(s *chartSeries) float64 {
	var total float64
	for i := range s.high {
		total += s.high[i] - s.low[i]
	}
	if len(s.high) == 0 {
		return 0
	}
	return total / float64(len(s.high))
}

// lowestIn returns the lowest value of values[lo:hi].
func lowestIn(values []float64, lo, hi int) float64 {
	if hi > len(values) {
		hi = len(values)
	}
	l := values[lo]
	for _, v := range values[lo:hi] {
		if v < l {
			l = v
		}
	}
	return l
}

// highestIn returns the highest value of values[lo:hi].
func highestIn(values []float64, lo, hi int) float64 {
	if hi > len(values) {
		hi = len(values)
	}
	h := values[lo]
	for _, v := range values[lo:hi] {
		if v > h {
			h = v
		}
	}
	return h
}
