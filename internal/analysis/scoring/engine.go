// Package scoring combines detector outputs, indicators and optional
// fundamentals into a composite signal with entry, target and stop prices,
// a confidence score and a letter grade.
package scoring

import (
	"context"
	"math"
	"sync"

	"stocksense/internal/analysis"
	"stocksense/internal/analysis/indicators"
	"stocksense/internal/analysis/patterns"
	apperrors "stocksense/internal/errors"
	"stocksense/internal/logging"
	"stocksense/internal/models"
)

// Weights are the fixed component weights of the composite score.
type Weights struct {
	Candlestick       float64
	ChartPattern      float64
	SupportResistance float64
	Volume            float64
	Trend             float64
	RSI               float64
}

// DefaultWeights returns the standard six-way weighting.
func DefaultWeights() Weights {
	return Weights{
		Candlestick:       0.15,
		ChartPattern:      0.25,
		SupportResistance: 0.20,
		Volume:            0.10,
		Trend:             0.15,
		RSI:               0.15,
	}
}

// Component names used in the signal breakdown.
const (
	ComponentCandlestick       = "candlestick"
	ComponentChartPattern      = "chart_pattern"
	ComponentSupportResistance = "support_resistance"
	ComponentVolume            = "volume"
	ComponentTrend             = "trend"
	ComponentRSI               = "rsi"
)

// Engine orchestrates the detectors and indicator library over one series.
type Engine struct {
	weights   Weights
	atrPeriod int
	rsiPeriod int

	candlesticks *patterns.CandlestickDetector
	charts       *patterns.ChartPatternDetector
	levels       *patterns.SupportResistanceDetector
	volume       *patterns.VolumeAnalyzer
	breakouts    *patterns.BreakoutDetector
}

// Params are the tunable detector and indicator parameters.
type Params struct {
	ExtremaOrder   int     // extrema confirmation window
	ClusterTolPct  float64 // level cluster tolerance, percent of the running mean
	MinTouches     int     // touches required to confirm a level
	VolumeLookback int
	ATRPeriod      int
	RSIPeriod      int
}

// DefaultParams returns the standard detector and indicator parameters.
func DefaultParams() Params {
	return Params{
		ExtremaOrder:   5,
		ClusterTolPct:  1.5,
		MinTouches:     2,
		VolumeLookback: 20,
		ATRPeriod:      14,
		RSIPeriod:      14,
	}
}

// NewEngine creates an engine with default weights and parameters.
func NewEngine() *Engine {
	return NewEngineWith(DefaultParams())
}

// NewEngineWith creates an engine with the supplied parameters. Zero or
// otherwise invalid fields fall back to the defaults.
func NewEngineWith(p Params) *Engine {
	def := DefaultParams()
	if p.ExtremaOrder < 1 {
		p.ExtremaOrder = def.ExtremaOrder
	}
	if p.ClusterTolPct <= 0 {
		p.ClusterTolPct = def.ClusterTolPct
	}
	if p.MinTouches < 1 {
		p.MinTouches = def.MinTouches
	}
	if p.VolumeLookback < 2 {
		p.VolumeLookback = def.VolumeLookback
	}
	if p.ATRPeriod < 1 {
		p.ATRPeriod = def.ATRPeriod
	}
	if p.RSIPeriod < 1 {
		p.RSIPeriod = def.RSIPeriod
	}
	return &Engine{
		weights:      DefaultWeights(),
		atrPeriod:    p.ATRPeriod,
		rsiPeriod:    p.RSIPeriod,
		candlesticks: patterns.NewCandlestickDetector(),
		charts:       patterns.NewChartPatternDetectorWith(p.ExtremaOrder),
		levels:       patterns.NewSupportResistanceDetectorWith(p.ExtremaOrder, p.ClusterTolPct/100, p.MinTouches),
		volume:       patterns.NewVolumeAnalyzerWith(p.VolumeLookback),
		breakouts:    patterns.NewBreakoutDetector(),
	}
}

// Contribution is one component's share of the composite score.
type Contribution struct {
	Strength     float64 `json:"strength"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Confidence carries the sigmoid base score and the ordered adjustments
// that produced the final clamped value.
type Confidence struct {
	Base        float64      `json:"base"`
	Final       float64      `json:"final"`
	Adjustments []Adjustment `json:"adjustments"`
}

// Adjustment is one confidence bonus or penalty with its reason.
type Adjustment struct {
	Factor string  `json:"factor"`
	Delta  float64 `json:"delta"`
}

// IndicatorSnapshot captures the indicator values used for a score.
type IndicatorSnapshot struct {
	ATR       float64              `json:"atr"`
	ATRPct    float64              `json:"atr_pct"`
	RSI       float64              `json:"rsi"`
	Trend     indicators.Trend     `json:"trend"`
	Fibonacci indicators.FibLevels `json:"fibonacci"`
}

// Details carries the raw detector outputs.
type Details struct {
	Candlestick       analysis.SignalResult `json:"candlestick"`
	ChartPattern      patterns.ChartSignal  `json:"chart_pattern"`
	SupportResistance patterns.LevelSignal  `json:"support_resistance"`
	Volume            patterns.VolumeSignal `json:"volume"`
	Breakout          analysis.SignalResult `json:"breakout_pullback"`
}

// ScoreResult is the terminal artifact of one scoring run.
type ScoreResult struct {
	Signal          analysis.Signal         `json:"signal"`
	Grade           string                  `json:"grade"`
	Confidence      Confidence              `json:"confidence"`
	CurrentPrice    float64                 `json:"current_price"`
	EntryPrice      EntryPlan               `json:"entry_price"`
	Target          TargetPlan              `json:"target"`
	StopLoss        StopPlan                `json:"stop_loss"`
	RiskReward      *float64                `json:"risk_reward_ratio"`
	Summary         []string                `json:"summary"`
	Indicators      IndicatorSnapshot       `json:"indicators"`
	SignalBreakdown map[string]Contribution `json:"signal_breakdown"`
	TotalScore      float64                 `json:"total_score"`
	Details         Details                 `json:"details"`
}

// Score runs the full pipeline: the four detectors fan out concurrently,
// the indicator values are computed, and everything joins into the weighted
// composite with derived prices, confidence and grade.
func (e *Engine) Score(ctx context.Context, candles []models.Candle, fundamentals *models.Fundamentals) (*ScoreResult, error) {
	if err := validateSeries(candles); err != nil {
		return nil, err
	}

	currentPrice := candles[len(candles)-1].Close

	var details Details
	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		details.Candlestick = e.candlesticks.Signal(candles)
	}()
	go func() {
		defer wg.Done()
		details.ChartPattern = e.charts.Signal(candles)
	}()
	go func() {
		defer wg.Done()
		details.SupportResistance = e.levels.Signal(candles)
	}()
	go func() {
		defer wg.Done()
		details.Volume = e.volume.Signal(candles)
	}()
	go func() {
		defer wg.Done()
		details.Breakout = e.breakouts.Signal(candles)
	}()
	wg.Wait()

	atr := indicators.ATR(candles, e.atrPeriod)
	rsi := indicators.RSI(candles, e.rsiPeriod)
	trend := indicators.DetectTrend(candles)
	fib := indicators.Fibonacci(candles)

	trendScore := 0.0
	switch trend.Direction {
	case indicators.TrendUp:
		trendScore = trend.Strength
	case indicators.TrendDown:
		trendScore = -trend.Strength
	}

	// RSI maps to 0 inside the 30-70 band and ramps toward +/-1 beyond it:
	// oversold reads bullish, overbought bearish.
	rsiScore := 0.0
	if rsi < 30 {
		rsiScore = (30 - rsi) / 30
	} else if rsi > 70 {
		rsiScore = -(rsi - 70) / 30
	}

	strengths := map[string]float64{
		ComponentCandlestick:       details.Candlestick.Strength,
		ComponentChartPattern:      details.ChartPattern.Strength,
		ComponentSupportResistance: details.SupportResistance.Strength,
		ComponentVolume:            details.Volume.Strength,
		ComponentTrend:             trendScore,
		ComponentRSI:               rsiScore,
	}
	weights := map[string]float64{
		ComponentCandlestick:       e.weights.Candlestick,
		ComponentChartPattern:      e.weights.ChartPattern,
		ComponentSupportResistance: e.weights.SupportResistance,
		ComponentVolume:            e.weights.Volume,
		ComponentTrend:             e.weights.Trend,
		ComponentRSI:               e.weights.RSI,
	}

	totalScore := 0.0
	breakdown := make(map[string]Contribution, len(weights))
	for name, w := range weights {
		s := strengths[name]
		totalScore += s * w
		breakdown[name] = Contribution{
			Strength:     analysis.Round4(s),
			Weight:       w,
			Contribution: analysis.Round4(s * w),
		}
	}

	signal := analysis.SignalHold
	if totalScore > 0.08 {
		signal = analysis.SignalBuy
	} else if totalScore < -0.08 {
		signal = analysis.SignalSell
	}

	entry := e.entryPlan(signal, details.SupportResistance.LevelReport, atr, trend, fib, currentPrice)

	// For SELL, targets, stop and R:R are evaluated from the recommended
	// re-entry price, keeping the buyer's perspective.
	basePrice := currentPrice
	if signal == analysis.SignalSell {
		basePrice = entry.Consensus
	}
	sellBase := signal == analysis.SignalSell

	target := e.targetPlan(details.SupportResistance.LevelReport, details.ChartPattern, atr, fib, basePrice, sellBase)
	stop := e.stopPlan(details.SupportResistance.LevelReport, atr, basePrice)
	rr := riskReward(basePrice, target.Consensus, stop.Final)

	confidence := e.confidence(totalScore, trend, rsi, details.Volume.VolumeReport, signal, strengths, atr, currentPrice, fundamentals)
	grade := assignGrade(confidence.Final, rr)
	summary := e.summary(summaryInput{
		signal:       signal,
		trend:        trend,
		rsi:          rsi,
		atr:          atr,
		currentPrice: currentPrice,
		entry:        entry,
		target:       target,
		stop:         stop,
		riskReward:   rr,
		details:      details,
		strengths:    strengths,
		fundamentals: fundamentals,
	})

	logger := logging.FromContext(ctx)
	logger.Debug().
		Str("signal", string(signal)).
		Str("grade", grade).
		Float64("total_score", totalScore).
		Float64("confidence", confidence.Final).
		Msg("Scoring complete")

	atrPct := 0.0
	if currentPrice > 0 {
		atrPct = atr / currentPrice * 100
	}

	return &ScoreResult{
		Signal:       signal,
		Grade:        grade,
		Confidence:   confidence,
		CurrentPrice: analysis.Round2(currentPrice),
		EntryPrice:   entry,
		Target:       target,
		StopLoss:     stop,
		RiskReward:   rr,
		Summary:      summary,
		Indicators: IndicatorSnapshot{
			ATR:       analysis.Round2(atr),
			ATRPct:    analysis.Round2(atrPct),
			RSI:       analysis.Round1(rsi),
			Trend:     trend,
			Fibonacci: fib,
		},
		SignalBreakdown: breakdown,
		TotalScore:      analysis.Round4(totalScore),
		Details:         details,
	}, nil
}

// validateSeries rejects empty series and non-finite or non-positive
// prices. Everything else degrades gracefully inside the detectors.
func validateSeries(candles []models.Candle) error {
	if len(candles) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidSeries, "empty price series")
	}
	for i, c := range candles {
		if !c.Valid() {
			return apperrors.Wrapf(apperrors.ErrInvalidSeries, "bar %d has invalid prices", i)
		}
	}
	return nil
}

// sigmoidConfidence maps |total_score| (typically 0-0.6) onto 0-100 with an
// S-curve centred at the midpoint.
func sigmoidConfidence(x float64) float64 {
	const k, midpoint = 8.0, 0.3
	return 100.0 / (1.0 + math.Exp(-k*(math.Abs(x)-midpoint)))
}

// assignGrade maps confidence plus an R:R bonus or penalty onto the fixed
// letter bands.
func assignGrade(confidence float64, rr *float64) string {
	score := confidence
	if rr != nil {
		switch {
		case *rr >= 3.0:
			score += 10
		case *rr >= 2.0:
			score += 5
		case *rr < 1.0:
			score -= 10
		}
	}

	switch {
	case score >= 80:
		return "A+"
	case score >= 70:
		return "A"
	case score >= 60:
		return "B+"
	case score >= 50:
		return "B"
	case score >= 40:
		return "C"
	case score >= 25:
		return "D"
	default:
		return "F"
	}
}
