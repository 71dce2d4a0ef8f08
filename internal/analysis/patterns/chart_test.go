package patterns

import (
	"math"
	"testing"
	"time"

	"stocksense/internal/analysis"
	"stocksense/internal/models"
)

// closeCandles builds a series where open, high and low collapse onto the
// close, so extrema come straight from the shape of the close series.
func closeCandles(closes []float64) []models.Candle {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}
	return candles
}

// zigzag linearly interpolates between pivot levels, step bars per segment.
func zigzag(levels []float64, step int) []float64 {
	out := []float64{levels[0]}
	for i := 1; i < len(levels); i++ {
		delta := (levels[i] - levels[i-1]) / float64(step)
		for j := 1; j <= step; j++ {
			out = append(out, levels[i-1]+delta*float64(j))
		}
	}
	return out
}

func TestChartEmptyInput(t *testing.T) {
	d := NewChartPatternDetector()

	patterns, err := d.Detect(nil)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if patterns != nil {
		t.Errorf("expected nil patterns, got %v", patterns)
	}

	result := d.Signal(nil)
	if result.Signal != analysis.SignalHold || result.TargetPrice != nil {
		t.Errorf("expected neutral signal without target, got %+v", result)
	}
}

func TestChartDoubleTop(t *testing.T) {
	// Two peaks within 2% (110, 111), neckline at the 100 trough between
	// them, and the series closing below it.
	candles := closeCandles(zigzag([]float64{105, 110, 100, 111, 95}, 7))
	d := NewChartPatternDetector()

	patterns, err := d.Detect(candles)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected exactly one pattern, got %d: %v", len(patterns), patterns)
	}

	p := patterns[0]
	if p.Name != "double_top" || p.Direction != analysis.Bearish || p.Confidence != 100 {
		t.Errorf("unexpected pattern: %+v", p)
	}
	if p.TargetPrice == nil {
		t.Fatal("double top should project a target")
	}
	// Peak-to-neckline height mirrored below the neckline: 100 - (111-100).
	if *p.TargetPrice != 89.0 {
		t.Errorf("expected target 89.00, got %v", *p.TargetPrice)
	}

	result := d.Signal(candles)
	if result.Signal != analysis.SignalSell || result.Strength != -1.0 {
		t.Errorf("expected SELL/-1.0, got %s/%v", result.Signal, result.Strength)
	}
	if result.TargetPrice == nil || *result.TargetPrice != 89.0 {
		t.Errorf("signal should surface the projected target, got %v", result.TargetPrice)
	}
}

func TestChartDoubleBottom(t *testing.T) {
	candles := closeCandles(zigzag([]float64{105, 100, 110, 99, 115}, 7))
	d := NewChartPatternDetector()

	patterns, err := d.Detect(candles)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected exactly one pattern, got %d: %v", len(patterns), patterns)
	}

	p := patterns[0]
	if p.Name != "double_bottom" || p.Direction != analysis.Bullish || p.Confidence != 90 {
		t.Errorf("unexpected pattern: %+v", p)
	}
	if p.TargetPrice == nil || *p.TargetPrice != 121.0 {
		t.Errorf("expected target 121.00, got %v", p.TargetPrice)
	}
}

func TestChartHeadAndShoulders(t *testing.T) {
	// Shoulders at 105 and 104 (within 5%), head at 110.
	candles := closeCandles(zigzag([]float64{100, 105, 98, 110, 97, 104, 96}, 8))
	d := NewChartPatternDetector()

	patterns, err := d.Detect(candles)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected exactly one pattern, got %d: %v", len(patterns), patterns)
	}

	p := patterns[0]
	if p.Name != "head_shoulders" || p.Direction != analysis.Bearish || p.Confidence != 85 {
		t.Errorf("unexpected pattern: %+v", p)
	}
	if p.Action != "sell quickly" {
		t.Errorf("unexpected action: %q", p.Action)
	}
}

func TestChartSymmetricalTriangle(t *testing.T) {
	// Descending peak line (110, 108, 106) over an ascending trough line
	// (96, 97, 98). The tight peaks and troughs also read as triple top and
	// triple bottom, which roughly cancel in the fold.
	candles := closeCandles(zigzag([]float64{100, 110, 96, 108, 97, 106, 98, 104}, 6))
	d := NewChartPatternDetector()

	patterns, err := d.Detect(candles)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	for _, name := range []string{"symmetrical_triangle", "triple_top", "triple_bottom"} {
		if findPattern(patterns, name) == nil {
			t.Errorf("%s not detected in %v", name, patterns)
		}
	}

	result := d.Signal(candles)
	if result.Signal != analysis.SignalHold {
		t.Errorf("expected HOLD from offsetting patterns, got %s", result.Signal)
	}
}

func TestChartBullFlag(t *testing.T) {
	// 10% pole in the first half, then a shallow drift in the second. The
	// flat flag half also qualifies as a box range.
	closes := make([]float64, 40)
	for i := 0; i < 20; i++ {
		closes[i] = 100 + float64(i)*10.0/19.0
	}
	for i := 20; i < 40; i++ {
		closes[i] = 110 - float64(i-19)*0.025
	}
	candles := closeCandles(closes)
	d := NewChartPatternDetector()

	patterns, err := d.Detect(candles)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	if findPattern(patterns, "bull_flag") == nil {
		t.Errorf("bull_flag not detected in %v", patterns)
	}
	if findPattern(patterns, "box_range") == nil {
		t.Errorf("box_range not detected in %v", patterns)
	}

	result := d.Signal(candles)
	if result.Signal != analysis.SignalBuy {
		t.Errorf("expected BUY, got %s", result.Signal)
	}
}

func TestChartBoxRange(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	d := NewChartPatternDetector()

	patterns, err := d.Detect(closeCandles(closes))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected exactly one pattern, got %d: %v", len(patterns), patterns)
	}
	if patterns[0].Name != "box_range" || patterns[0].Direction != analysis.Neutral {
		t.Errorf("unexpected pattern: %+v", patterns[0])
	}

	result := d.Signal(closeCandles(closes))
	if result.Signal != analysis.SignalHold || math.Abs(result.Strength) > 1e-9 {
		t.Errorf("expected neutral fold, got %s/%v", result.Signal, result.Strength)
	}
}
