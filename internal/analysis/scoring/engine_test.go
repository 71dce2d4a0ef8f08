package scoring

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"stocksense/internal/analysis"
	"stocksense/internal/analysis/indicators"
	apperrors "stocksense/internal/errors"
	"stocksense/internal/models"
)

func flatSeries(n int) []models.Candle {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      100, High: 100, Low: 100, Close: 100,
			Volume: 1000000,
		}
	}
	return candles
}

// risingSeries compounds 1% per bar with proportionally rising volume.
func risingSeries(n int) []models.Candle {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	price := 100.0
	for i := range candles {
		open := price
		price *= 1.01
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      open,
			High:      price,
			Low:       open,
			Close:     price,
			Volume:    int64(1000000 * math.Pow(1.01, float64(i))),
		}
	}
	return candles
}

func TestScoreRejectsInvalidSeries(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()

	if _, err := e.Score(ctx, nil, nil); !errors.Is(err, apperrors.ErrInvalidSeries) {
		t.Errorf("expected ErrInvalidSeries for empty input, got %v", err)
	}

	bad := flatSeries(10)
	bad[3].Close = -5
	if _, err := e.Score(ctx, bad, nil); !errors.Is(err, apperrors.ErrInvalidSeries) {
		t.Errorf("expected ErrInvalidSeries for negative price, got %v", err)
	}

	bad = flatSeries(10)
	bad[7].High = math.NaN()
	if _, err := e.Score(ctx, bad, nil); !errors.Is(err, apperrors.ErrInvalidSeries) {
		t.Errorf("expected ErrInvalidSeries for NaN price, got %v", err)
	}
}

func TestScoreFlatSeries(t *testing.T) {
	e := NewEngine()

	result, err := e.Score(context.Background(), flatSeries(50), nil)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	if result.Signal != analysis.SignalHold {
		t.Errorf("expected HOLD, got %s", result.Signal)
	}
	if result.TotalScore != 0 {
		t.Errorf("expected total score 0, got %v", result.TotalScore)
	}
	if result.Indicators.RSI != 50 {
		t.Errorf("expected neutral RSI, got %v", result.Indicators.RSI)
	}
	if result.Indicators.ATR != 0 {
		t.Errorf("expected zero ATR, got %v", result.Indicators.ATR)
	}
	if result.Indicators.Trend.Direction != indicators.TrendSideways {
		t.Errorf("expected sideways trend, got %s", result.Indicators.Trend.Direction)
	}
	if result.Details.Volume.Trend != "stable" {
		t.Errorf("expected stable volume trend, got %q", result.Details.Volume.Trend)
	}
	if result.CurrentPrice != 100 {
		t.Errorf("expected current price 100, got %v", result.CurrentPrice)
	}

	// Flat prices leave zero risk distance from the HOLD base.
	if result.RiskReward != nil {
		t.Errorf("expected nil R:R, got %v", *result.RiskReward)
	}
	if result.Grade != "F" {
		t.Errorf("expected grade F from a signal-free series, got %s", result.Grade)
	}

	for name, c := range result.SignalBreakdown {
		if c.Strength != 0 {
			t.Errorf("component %s: expected zero strength, got %v", name, c.Strength)
		}
	}
}

func TestScoreRisingSeries(t *testing.T) {
	e := NewEngine()

	result, err := e.Score(context.Background(), risingSeries(60), nil)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	if result.Signal != analysis.SignalBuy {
		t.Errorf("expected BUY, got %s (score %v)", result.Signal, result.TotalScore)
	}
	if result.Indicators.Trend.Direction != indicators.TrendUp {
		t.Errorf("expected uptrend, got %s", result.Indicators.Trend.Direction)
	}
	if result.Indicators.Trend.Strength != 1.0 {
		t.Errorf("expected saturated trend strength, got %v", result.Indicators.Trend.Strength)
	}
	if result.Indicators.RSI != 100 {
		t.Errorf("expected RSI 100 on a pure rise, got %v", result.Indicators.RSI)
	}
	if result.Details.Volume.OBVSignal != analysis.SignalBuy {
		t.Errorf("expected OBV BUY, got %s", result.Details.Volume.OBVSignal)
	}

	// Candle 1.0, trend 1.0, RSI -1.0, volume 0.4 under the fixed weights.
	if result.TotalScore != 0.19 {
		t.Errorf("expected total score 0.19, got %v", result.TotalScore)
	}

	if result.Confidence.Final < 5 || result.Confidence.Final > 95 {
		t.Errorf("confidence out of bounds: %v", result.Confidence.Final)
	}
	if result.EntryPrice.Consensus <= 0 || result.EntryPrice.Consensus >= result.CurrentPrice {
		t.Errorf("BUY entry should sit below the current price: %+v", result.EntryPrice)
	}
	if result.Target.Consensus <= result.CurrentPrice {
		t.Errorf("target should sit above the current price: %+v", result.Target)
	}
	if result.RiskReward != nil && *result.RiskReward < 0 {
		t.Errorf("R:R must be non-negative, got %v", *result.RiskReward)
	}
}

func TestScoreSingleBar(t *testing.T) {
	e := NewEngine()

	result, err := e.Score(context.Background(), flatSeries(1), nil)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	if result.Signal != analysis.SignalHold {
		t.Errorf("expected HOLD, got %s", result.Signal)
	}
	if result.Indicators.RSI != 50 || result.Indicators.ATR != 0 {
		t.Errorf("expected neutral indicators, got %+v", result.Indicators)
	}
	if len(result.Summary) < 2 {
		t.Errorf("expected a summary even for degenerate input, got %v", result.Summary)
	}
}

func TestScoreBreakdownConsistency(t *testing.T) {
	e := NewEngine()

	result, err := e.Score(context.Background(), risingSeries(60), nil)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	wantWeights := map[string]float64{
		ComponentCandlestick:       0.15,
		ComponentChartPattern:      0.25,
		ComponentSupportResistance: 0.20,
		ComponentVolume:            0.10,
		ComponentTrend:             0.15,
		ComponentRSI:               0.15,
	}
	if len(result.SignalBreakdown) != len(wantWeights) {
		t.Fatalf("expected %d components, got %v", len(wantWeights), result.SignalBreakdown)
	}

	var sum float64
	for name, want := range wantWeights {
		c, ok := result.SignalBreakdown[name]
		if !ok {
			t.Fatalf("component %s missing from breakdown", name)
		}
		if c.Weight != want {
			t.Errorf("component %s: expected weight %v, got %v", name, want, c.Weight)
		}
		if c.Strength < -1 || c.Strength > 1 {
			t.Errorf("component %s: strength out of bounds: %v", name, c.Strength)
		}
		sum += c.Contribution
	}
	if math.Abs(sum-result.TotalScore) > 1e-3 {
		t.Errorf("contributions sum to %v, total score %v", sum, result.TotalScore)
	}
}

func TestScoreDeterminism(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	candles := risingSeries(60)
	fundamentals := &models.Fundamentals{
		ShortName:         "Acme Corp",
		TargetMeanPrice:   250,
		RecommendationKey: "buy",
		EarningsGrowth:    fptr(0.3),
	}

	first, err := e.Score(ctx, candles, fundamentals)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := e.Score(ctx, candles, fundamentals)
		if err != nil {
			t.Fatalf("Score returned error: %v", err)
		}
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("score not deterministic:\nfirst %+v\nnext  %+v", first, next)
		}
	}
}

func TestScoreCustomParams(t *testing.T) {
	candles := risingSeries(30)

	custom, err := NewEngineWith(Params{RSIPeriod: 50, VolumeLookback: 40}).Score(context.Background(), candles, nil)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	// 30 bars cannot fill a 50-bar RSI or a 40-bar volume window.
	if custom.Indicators.RSI != 50 {
		t.Errorf("expected neutral RSI 50 with the longer period, got %v", custom.Indicators.RSI)
	}
	if custom.Details.Volume.Trend != "unknown" {
		t.Errorf("expected unknown volume trend with the longer lookback, got %q", custom.Details.Volume.Trend)
	}

	// Unset fields fall back to the defaults.
	baseline, err := NewEngineWith(Params{}).Score(context.Background(), candles, nil)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if baseline.Indicators.RSI != 100 {
		t.Errorf("expected RSI 100 with the default period, got %v", baseline.Indicators.RSI)
	}
	if baseline.Details.Volume.Trend == "unknown" {
		t.Errorf("expected a classified volume trend with the default lookback")
	}
}
