package patterns

import (
	"testing"
	"time"

	"stocksense/internal/analysis"
	"stocksense/internal/models"
)

// volumeCandles pairs a close series with explicit volumes.
func volumeCandles(closes []float64, volumes []int64) []models.Candle {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    volumes[i],
		}
	}
	return candles
}

func constantSeries(n int, close float64, volume int64) []models.Candle {
	closes := make([]float64, n)
	volumes := make([]int64, n)
	for i := range closes {
		closes[i] = close
		volumes[i] = volume
	}
	return volumeCandles(closes, volumes)
}

// accumulationSeries rises half a point per bar on gently growing volume,
// keeping price and volume slopes aligned.
func accumulationSeries(n int) ([]float64, []int64) {
	closes := make([]float64, n)
	volumes := make([]int64, n)
	for i := range closes {
		closes[i] = 100 + 0.5*float64(i)
		volumes[i] = 1000 + int64(10*i)
	}
	return closes, volumes
}

func TestVolumeShortSeries(t *testing.T) {
	a := NewVolumeAnalyzer()

	report := a.Analyze(constantSeries(10, 100, 1000))
	if report.Trend != "unknown" {
		t.Errorf("expected unknown trend, got %q", report.Trend)
	}
	if report.OBVSignal != analysis.SignalHold {
		t.Errorf("expected HOLD OBV signal, got %s", report.OBVSignal)
	}

	result := a.Signal(constantSeries(10, 100, 1000))
	if result.Signal != analysis.SignalHold || result.Strength != 0 {
		t.Errorf("expected HOLD/0, got %s/%v", result.Signal, result.Strength)
	}
}

func TestVolumeFlatSeries(t *testing.T) {
	a := NewVolumeAnalyzer()

	report := a.Analyze(constantSeries(30, 100, 1000))
	if report.Trend != "stable" {
		t.Errorf("expected stable trend, got %q", report.Trend)
	}
	if report.AvgVolume != 1000 || report.VolumeRatio != 1.0 {
		t.Errorf("unexpected averages: %+v", report)
	}
	if report.Abnormal || report.Divergence {
		t.Errorf("flat series should raise no flags: %+v", report)
	}
	if report.OBVSignal != analysis.SignalHold {
		t.Errorf("expected HOLD OBV signal, got %s", report.OBVSignal)
	}

	result := a.Signal(constantSeries(30, 100, 1000))
	if result.Signal != analysis.SignalHold || result.Strength != 0 {
		t.Errorf("expected HOLD/0, got %s/%v", result.Signal, result.Strength)
	}
}

func TestVolumeAccumulation(t *testing.T) {
	closes, volumes := accumulationSeries(60)
	a := NewVolumeAnalyzer()

	result := a.Signal(volumeCandles(closes, volumes))

	if result.OBVSignal != analysis.SignalBuy {
		t.Errorf("expected BUY OBV signal, got %s", result.OBVSignal)
	}
	if result.Abnormal || result.Divergence {
		t.Errorf("unexpected flags: %+v", result.VolumeReport)
	}
	if result.Signal != analysis.SignalBuy || result.Strength != 0.4 {
		t.Errorf("expected BUY/0.4, got %s/%v", result.Signal, result.Strength)
	}
}

func TestVolumeAbnormalSpike(t *testing.T) {
	closes, volumes := accumulationSeries(60)
	volumes[59] = 5000
	a := NewVolumeAnalyzer()

	result := a.Signal(volumeCandles(closes, volumes))

	if !result.Abnormal {
		t.Errorf("expected abnormal volume, ratio %v", result.VolumeRatio)
	}
	if result.Trend != "increasing" {
		t.Errorf("expected increasing trend, got %q", result.Trend)
	}
	// 0.4 OBV base, x1.5 abnormal, +0.1 trend.
	if result.Signal != analysis.SignalBuy || result.Strength != 0.7 {
		t.Errorf("expected BUY/0.7, got %s/%v", result.Signal, result.Strength)
	}
}

func TestVolumeDivergenceDampens(t *testing.T) {
	// Price falls while volume grows: a distribution divergence that halves
	// the OBV score back under the SELL threshold.
	closes := make([]float64, 60)
	volumes := make([]int64, 60)
	for i := range closes {
		closes[i] = 130 - 0.5*float64(i)
		volumes[i] = 1000 + int64(10*i)
	}
	a := NewVolumeAnalyzer()

	result := a.Signal(volumeCandles(closes, volumes))

	if !result.Divergence {
		t.Error("expected price/volume divergence")
	}
	if result.OBVSignal != analysis.SignalSell {
		t.Errorf("expected SELL OBV signal, got %s", result.OBVSignal)
	}
	if result.Signal != analysis.SignalHold || result.Strength != -0.2 {
		t.Errorf("expected HOLD/-0.2, got %s/%v", result.Signal, result.Strength)
	}
}

func TestVolumeCustomLookback(t *testing.T) {
	a := NewVolumeAnalyzerWith(40)

	report := a.Analyze(constantSeries(30, 100, 1000))
	if report.Trend != "unknown" {
		t.Errorf("expected unknown trend below the 40-bar lookback, got %q", report.Trend)
	}
}
