package scoring

import (
	"strings"
	"testing"

	"stocksense/internal/analysis"
	"stocksense/internal/analysis/indicators"
	"stocksense/internal/analysis/patterns"
	"stocksense/internal/models"
)

func TestSummaryFourSections(t *testing.T) {
	e := NewEngine()
	in := summaryInput{
		signal: analysis.SignalBuy,
		trend: indicators.Trend{
			Direction:       indicators.TrendUp,
			Strength:        0.8,
			PriceVsEMA20Pct: 2.5,
			PriceVsEMA50Pct: 5.0,
		},
		rsi:          72,
		atr:          1,
		currentPrice: 100,
		entry:        EntryPlan{Consensus: 97, DiscountPct: 3},
		target:       TargetPlan{Consensus: 106.5},
		stop:         StopPlan{Final: 95},
		riskReward:   fptr(1.9),
		details: Details{
			Candlestick: analysis.SignalResult{
				Patterns: []analysis.Pattern{{Label: "Hammer", Confidence: 65}},
			},
			Volume: patterns.VolumeSignal{
				VolumeReport: patterns.VolumeReport{OBVSignal: analysis.SignalBuy},
			},
		},
		strengths: map[string]float64{
			ComponentCandlestick:       0.5,
			ComponentChartPattern:      0.3,
			ComponentSupportResistance: 0.2,
			ComponentVolume:            0.1,
		},
		fundamentals: &models.Fundamentals{
			ShortName:       "Acme Corp",
			Sector:          "Technology",
			EarningsGrowth:  fptr(0.6),
			TargetMeanPrice: 120,
		},
	}

	lines := e.summary(in)

	if len(lines) != 4 {
		t.Fatalf("expected 4 summary lines, got %d: %v", len(lines), lines)
	}

	if !strings.Contains(lines[0], "Acme Corp (Technology) trades at 100.00") {
		t.Errorf("unexpected state line: %q", lines[0])
	}
	if !strings.Contains(lines[0], "in a strong uptrend (strength 80%)") {
		t.Errorf("expected a strong-uptrend description: %q", lines[0])
	}
	if !strings.Contains(lines[0], "above both EMA20 (+2.50%) and EMA50 (+5.00%)") {
		t.Errorf("unexpected EMA description: %q", lines[0])
	}

	if !strings.Contains(lines[1], "Hammer (65%)") ||
		!strings.Contains(lines[1], "volume supports the buy direction") ||
		!strings.Contains(lines[1], "all 4 core signals point higher") {
		t.Errorf("unexpected signals line: %q", lines[1])
	}
	if !strings.Contains(lines[1], "RSI (72) is in the overbought zone") ||
		!strings.Contains(lines[1], "beware of a short-term pullback") {
		t.Errorf("expected the overbought warning: %q", lines[1])
	}

	if !strings.Contains(lines[2], "earnings growth of 60% shows a strong improvement") ||
		!strings.Contains(lines[2], "the mean analyst target is 120.00 (+20% from here)") {
		t.Errorf("unexpected fundamentals line: %q", lines[2])
	}

	want := "Suggested entry 97.00 (-3.00%), target 106.50, stop 95.00 (R:R 1.90:1)."
	if lines[3] != want {
		t.Errorf("trade guide mismatch:\ngot  %q\nwant %q", lines[3], want)
	}
}

func TestSummaryNoSignals(t *testing.T) {
	e := NewEngine()
	in := summaryInput{
		signal:       analysis.SignalHold,
		trend:        indicators.Trend{Direction: indicators.TrendSideways},
		rsi:          50,
		currentPrice: 100,
	}

	lines := e.summary(in)

	if len(lines) != 2 {
		t.Fatalf("expected 2 summary lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "moving sideways") {
		t.Errorf("unexpected state line: %q", lines[0])
	}
	if lines[1] != "No notable technical signals detected." {
		t.Errorf("unexpected signals line: %q", lines[1])
	}
}

func TestSummarySellAgainstBuyConsensus(t *testing.T) {
	e := NewEngine()
	in := summaryInput{
		signal:       analysis.SignalSell,
		trend:        indicators.Trend{Direction: indicators.TrendDown, Strength: 0.4},
		rsi:          45,
		currentPrice: 100,
		fundamentals: &models.Fundamentals{
			RecommendationKey: "buy",
			EarningsGrowth:    fptr(0.2),
		},
	}

	lines := e.summary(in)

	var fund string
	for _, line := range lines {
		if strings.Contains(line, "analyst consensus") {
			fund = line
		}
	}
	if fund == "" {
		t.Fatalf("fundamentals line missing: %v", lines)
	}
	// The conflict sentence absorbs the earnings-growth remark.
	if !strings.Contains(fund, "despite 20% earnings growth the chart shows dominant selling pressure") {
		t.Errorf("unexpected conflict sentence: %q", fund)
	}
	if strings.Contains(fund, "improving results") {
		t.Errorf("earnings sentence should have been replaced: %q", fund)
	}
}
