package patterns

import (
	"stocksense/internal/analysis"
	"stocksense/internal/analysis/indicators"
	"stocksense/internal/models"
)

// VolumeAnalyzer evaluates volume behavior relative to price movement.
type VolumeAnalyzer struct {
	lookback int
}

// NewVolumeAnalyzer creates an analyzer with the default 20-bar lookback.
func NewVolumeAnalyzer() *VolumeAnalyzer {
	return &VolumeAnalyzer{lookback: 20}
}

// NewVolumeAnalyzerWith creates an analyzer with an explicit lookback.
// Values below 2 fall back to the default.
func NewVolumeAnalyzerWith(lookback int) *VolumeAnalyzer {
	if lookback < 2 {
		lookback = 20
	}
	return &VolumeAnalyzer{lookback: lookback}
}

func (a *VolumeAnalyzer) Name() string {
	return "VolumeAnalyzer"
}

// VolumeReport describes volume conditions over the lookback window.
type VolumeReport struct {
	Trend         string          `json:"volume_trend"`
	AvgVolume     float64         `json:"avg_volume"`
	CurrentVolume int64           `json:"current_volume"`
	VolumeRatio   float64         `json:"current_vs_avg_ratio"`
	Abnormal      bool            `json:"abnormal_volume"`
	OBVSignal     analysis.Signal `json:"obv_signal"`
	Divergence    bool            `json:"price_volume_divergence"`
}

// VolumeSignal is the report plus the derived trading signal.
type VolumeSignal struct {
	VolumeReport
	Signal   analysis.Signal `json:"signal"`
	Strength float64         `json:"strength"`
}

// Analyze runs the full volume analysis. Series shorter than the lookback
// produce the neutral "unknown" report.
func (a *VolumeAnalyzer) Analyze(candles []models.Candle) VolumeReport {
	if len(candles) < a.lookback {
		return VolumeReport{Trend: "unknown", OBVSignal: analysis.SignalHold}
	}

	closes := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = float64(c.Volume)
	}

	recentVol := volumes[len(volumes)-a.lookback:]
	avgVolume := mean(recentVol)
	currentVolume := volumes[len(volumes)-1]
	volumeRatio := 1.0
	if avgVolume > 0 {
		volumeRatio = currentVolume / avgVolume
	}

	// Trend classified from the regression slope of the recent window,
	// measured against 2% of average volume per bar.
	volSlope := indicators.Slope(recentVol)
	trend := "stable"
	if volSlope > avgVolume*0.02 {
		trend = "increasing"
	} else if volSlope < -avgVolume*0.02 {
		trend = "decreasing"
	}

	obv := computeOBV(closes, volumes)

	return VolumeReport{
		Trend:         trend,
		AvgVolume:     float64(int64(avgVolume + 0.5)),
		CurrentVolume: int64(currentVolume),
		VolumeRatio:   round2(volumeRatio),
		Abnormal:      volumeRatio > 2.0,
		OBVSignal:     obvSignal(obv),
		Divergence:    priceVolumeDivergence(closes, volumes),
	}
}

// Signal scores the report: OBV direction carries the base weight, abnormal
// volume amplifies it, divergence halves it, and the volume trend nudges.
func (a *VolumeAnalyzer) Signal(candles []models.Candle) VolumeSignal {
	report := a.Analyze(candles)

	score := 0.0
	switch report.OBVSignal {
	case analysis.SignalBuy:
		score += 0.4
	case analysis.SignalSell:
		score -= 0.4
	}

	if report.Abnormal {
		score *= 1.5
	}
	if report.Divergence {
		score *= 0.5
	}

	switch report.Trend {
	case "increasing":
		score += 0.1
	case "decreasing":
		score -= 0.1
	}

	if score > 1.0 {
		score = 1.0
	} else if score < -1.0 {
		score = -1.0
	}

	signal := analysis.SignalHold
	if score > 0.2 {
		signal = analysis.SignalBuy
	} else if score < -0.2 {
		signal = analysis.SignalSell
	}

	return VolumeSignal{
		VolumeReport: report,
		Signal:       signal,
		Strength:     round4(score),
	}
}

// computeOBV accumulates volume on up closes and subtracts it on down
// closes.
func computeOBV(closes, volumes []float64) []float64 {
	obv := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv[i] = obv[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			obv[i] = obv[i-1] - volumes[i]
		default:
			obv[i] = obv[i-1]
		}
	}
	return obv
}

// obvSignal classifies the slope of the last 10 OBV values, normalized by
// the 20-bar OBV magnitude, against +/-0.01.
func obvSignal(obv []float64) analysis.Signal {
	if len(obv) < 10 {
		return analysis.SignalHold
	}
	slope := indicators.Slope(obv[len(obv)-10:])

	obvRange := 1.0
	if len(obv) >= 20 {
		obvRange = 0
		for _, v := range obv[len(obv)-20:] {
			if abs(v) > obvRange {
				obvRange = abs(v)
			}
		}
	}
	normalized := slope / max(obvRange, 1.0)

	if normalized > 0.01 {
		return analysis.SignalBuy
	}
	if normalized < -0.01 {
		return analysis.SignalSell
	}
	return analysis.SignalHold
}

// priceVolumeDivergence reports a sign mismatch between the 10-bar
// regression slopes of price and volume.
func priceVolumeDivergence(closes, volumes []float64) bool {
	if len(closes) < 10 {
		return false
	}
	priceSlope := indicators.Slope(closes[len(closes)-10:])
	volSlope := indicators.Slope(volumes[len(volumes)-10:])

	priceDir := -1
	if priceSlope > 0 {
		priceDir = 1
	}
	volDir := -1
	if volSlope > 0 {
		volDir = 1
	}
	return priceDir != volDir
}
