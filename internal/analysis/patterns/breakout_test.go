package patterns

import (
	"testing"

	"stocksense/internal/analysis"
)

// breakoutSeries climbs to a 100 peak, dips, breaks out to 120 on a volume
// spike, then pulls back 15% and stabilizes above the broken level.
func breakoutSeries() ([]float64, []int64) {
	var closes []float64
	for i := 0; i <= 20; i++ { // 80 -> 100
		closes = append(closes, 80+float64(i))
	}
	for i := 1; i <= 10; i++ { // 100 -> 90
		closes = append(closes, 100-float64(i))
	}
	for i := 1; i <= 10; i++ { // 90 -> 120
		closes = append(closes, 90+3*float64(i))
	}
	for i := 1; i <= 9; i++ { // 120 -> 102
		closes = append(closes, 120-2*float64(i))
	}
	for i := 1; i <= 10; i++ { // 102 -> 106
		closes = append(closes, 102+0.4*float64(i))
	}

	volumes := make([]int64, len(closes))
	for i := range volumes {
		volumes[i] = 1000
	}
	volumes[40] = 2000 // the breakout bar
	return closes, volumes
}

func TestBreakoutPullback(t *testing.T) {
	closes, volumes := breakoutSeries()
	d := NewBreakoutDetector()

	patterns, err := d.Detect(volumeCandles(closes, volumes))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected one pattern, got %d: %v", len(patterns), patterns)
	}

	p := patterns[0]
	if p.Name != "breakout_pullback" || p.Direction != analysis.Bullish {
		t.Errorf("unexpected pattern: %+v", p)
	}
	if p.BarIndex != 40 {
		t.Errorf("expected breakout at bar 40, got %d", p.BarIndex)
	}
	if p.BreakoutLevel == nil || *p.BreakoutLevel != 100 {
		t.Errorf("expected breakout level 100, got %v", p.BreakoutLevel)
	}
	if p.PullbackLow == nil || *p.PullbackLow != 102 {
		t.Errorf("expected pullback low 102, got %v", p.PullbackLow)
	}
	if p.PullbackPct == nil || *p.PullbackPct != 15 {
		t.Errorf("expected pullback 15%%, got %v", p.PullbackPct)
	}
	if !p.VolumeConfirmed {
		t.Error("expected volume confirmation")
	}
	// 60 base, +15 volume, +10 shallow pullback; price too far off the peak
	// for the last bonus.
	if p.Confidence != 85 {
		t.Errorf("expected confidence 85, got %v", p.Confidence)
	}
}

func TestBreakoutSignal(t *testing.T) {
	closes, volumes := breakoutSeries()
	d := NewBreakoutDetector()

	result := d.Signal(volumeCandles(closes, volumes))
	if result.Signal != analysis.SignalBuy || result.Strength != 0.85 {
		t.Errorf("expected BUY/0.85, got %s/%v", result.Signal, result.Strength)
	}
}

func TestBreakoutRequiresHigherPeak(t *testing.T) {
	// Second peak only 1% above the first: no breakout.
	closes, volumes := breakoutSeries()
	for i := 31; i <= 40; i++ {
		closes[i] = 90 + 1.1*float64(i-30) // 90 -> 101
	}
	for i := 41; i <= 49; i++ {
		closes[i] = 101 - 0.4*float64(i-40)
	}
	for i := 50; i <= 59; i++ {
		closes[i] = 97.4 + 0.2*float64(i-49)
	}
	d := NewBreakoutDetector()

	patterns, err := d.Detect(volumeCandles(closes, volumes))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if patterns != nil {
		t.Errorf("expected no patterns, got %v", patterns)
	}

	result := d.Signal(volumeCandles(closes, volumes))
	if result.Signal != analysis.SignalHold || result.Strength != 0 {
		t.Errorf("expected HOLD/0, got %s/%v", result.Signal, result.Strength)
	}
}

func TestBreakoutShortSeries(t *testing.T) {
	closes, volumes := breakoutSeries()
	d := NewBreakoutDetector()

	patterns, err := d.Detect(volumeCandles(closes[:20], volumes[:20]))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if patterns != nil {
		t.Errorf("expected no patterns below the minimum length, got %v", patterns)
	}
}
