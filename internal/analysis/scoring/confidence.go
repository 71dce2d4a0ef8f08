package scoring

import (
	"fmt"
	"strings"

	"stocksense/internal/analysis"
	"stocksense/internal/analysis/indicators"
	"stocksense/internal/analysis/patterns"
	"stocksense/internal/models"
)

var (
	buyRecommendations  = []string{"strong_buy", "buy"}
	sellRecommendations = []string{"strong_sell", "sell", "underperform"}
)

// confidence computes the sigmoid base confidence and applies the
// multi-factor bonuses and penalties, clamping the result to [5, 95].
func (e *Engine) confidence(totalScore float64, trend indicators.Trend, rsi float64, volume patterns.VolumeReport, signal analysis.Signal, strengths map[string]float64, atr, currentPrice float64, fundamentals *models.Fundamentals) Confidence {
	base := sigmoidConfidence(totalScore)
	score := base
	var adjustments []Adjustment

	apply := func(factor string, delta float64) {
		score += delta
		adjustments = append(adjustments, Adjustment{Factor: factor, Delta: delta})
	}

	// Trend alignment.
	switch {
	case signal == analysis.SignalBuy && trend.Direction == indicators.TrendUp:
		apply("trend aligned (up)", minf(trend.Strength*12, 10))
	case signal == analysis.SignalSell && trend.Direction == indicators.TrendDown:
		apply("trend aligned (down)", minf(trend.Strength*12, 10))
	case signal == analysis.SignalBuy && trend.Direction == indicators.TrendDown:
		apply("counter-trend buy", -minf(trend.Strength*10, 8))
	case signal == analysis.SignalSell && trend.Direction == indicators.TrendUp:
		apply("counter-trend sell", -minf(trend.Strength*10, 8))
	}

	// RSI zone proximity, with an extended neutral band.
	switch {
	case signal == analysis.SignalBuy && rsi < 30:
		apply(fmt.Sprintf("RSI oversold (%.0f)", rsi), 8)
	case signal == analysis.SignalBuy && rsi >= 30 && rsi <= 45:
		if bonus := analysis.Round1((45 - rsi) / 15 * 5); bonus >= 0.5 {
			apply(fmt.Sprintf("RSI nearing oversold (%.0f)", rsi), bonus)
		}
	case signal == analysis.SignalBuy && rsi >= 60 && rsi <= 70:
		if penalty := analysis.Round1((rsi - 60) / 10 * 4); penalty >= 0.5 {
			apply(fmt.Sprintf("RSI nearing overbought (%.0f)", rsi), -penalty)
		}
	case signal == analysis.SignalBuy && rsi > 70:
		apply(fmt.Sprintf("RSI overbought (%.0f)", rsi), -6)
	case signal == analysis.SignalSell && rsi > 70:
		apply(fmt.Sprintf("RSI overbought (%.0f)", rsi), 8)
	case signal == analysis.SignalSell && rsi >= 55 && rsi <= 70:
		if bonus := analysis.Round1((rsi - 55) / 15 * 5); bonus >= 0.5 {
			apply(fmt.Sprintf("RSI nearing overbought (%.0f)", rsi), bonus)
		}
	case signal == analysis.SignalSell && rsi >= 30 && rsi <= 40:
		if penalty := analysis.Round1((40 - rsi) / 10 * 4); penalty >= 0.5 {
			apply(fmt.Sprintf("RSI nearing oversold (%.0f)", rsi), -penalty)
		}
	case signal == analysis.SignalSell && rsi < 30:
		apply(fmt.Sprintf("RSI oversold (%.0f)", rsi), -6)
	}

	// Volume confirmation against divergence.
	if volume.OBVSignal == signal && volume.VolumeRatio > 1.3 {
		apply(fmt.Sprintf("volume confirmation (%.1fx)", volume.VolumeRatio), minf((volume.VolumeRatio-1)*5, 8))
	} else if volume.Divergence {
		apply("price-volume divergence", -5)
	}

	// Consensus across the four core detectors.
	coreKeys := []string{ComponentCandlestick, ComponentChartPattern, ComponentSupportResistance, ComponentVolume}
	var nonZero []float64
	for _, k := range coreKeys {
		if s := strengths[k]; s != 0 {
			nonZero = append(nonZero, s)
		}
	}
	if len(nonZero) >= 2 {
		aligned := 0
		for _, s := range nonZero {
			if (signal == analysis.SignalBuy && s > 0) || (signal == analysis.SignalSell && s < 0) {
				aligned++
			}
		}
		ratio := float64(aligned) / float64(len(nonZero))
		switch {
		case len(nonZero) >= 3 && ratio >= 1.0:
			apply(fmt.Sprintf("all signals aligned (%d/%d)", aligned, len(nonZero)), 12)
		case len(nonZero) >= 3 && ratio >= 0.75:
			apply(fmt.Sprintf("signal convergence (%d/%d)", aligned, len(nonZero)), 7)
		case ratio >= 0.75:
			apply(fmt.Sprintf("signals aligned (%d/%d)", aligned, len(nonZero)), 4)
		case ratio < 0.5:
			apply("mixed signals", -5)
		}
	}

	// ATR-relative volatility.
	atrPct := 0.0
	if currentPrice > 0 {
		atrPct = atr / currentPrice * 100
	}
	switch {
	case atrPct > 5.0:
		apply(fmt.Sprintf("high volatility (%.1f%%)", atrPct), -minf(analysis.Round1((atrPct-5.0)/3.0*8), 8))
	case atrPct > 3.0:
		apply(fmt.Sprintf("elevated volatility (%.1f%%)", atrPct), -minf(analysis.Round1((atrPct-3.0)/2.0*3), 3))
	case atrPct < 1.0:
		if bonus := minf(analysis.Round1((1.0-atrPct)*4), 4); bonus >= 0.5 {
			apply(fmt.Sprintf("low volatility (%.1f%%)", atrPct), bonus)
		}
	}

	// Optional fundamentals.
	for _, adj := range fundamentalAdjustments(signal, currentPrice, fundamentals) {
		apply(adj.Factor, adj.Delta)
	}

	final := score
	if final < 5 {
		final = 5
	} else if final > 95 {
		final = 95
	}

	if adjustments == nil {
		adjustments = []Adjustment{}
	}
	return Confidence{
		Base:        analysis.Round1(base),
		Final:       analysis.Round1(final),
		Adjustments: adjustments,
	}
}

// fundamentalAdjustments derives confidence deltas from analyst targets,
// recommendation alignment, earnings growth and short interest. Missing
// fundamentals yield no adjustments.
func fundamentalAdjustments(signal analysis.Signal, price float64, f *models.Fundamentals) []Adjustment {
	if f == nil {
		return nil
	}
	var out []Adjustment

	if f.TargetMeanPrice > 0 && price > 0 {
		upside := (f.TargetMeanPrice - price) / price
		pct := upside * 100
		switch {
		case signal == analysis.SignalBuy && upside >= 0.15:
			out = append(out, Adjustment{fmt.Sprintf("analyst target upside (%.0f%%)", pct), minf(analysis.Round1(upside/0.15*8), 8)})
		case signal == analysis.SignalBuy && upside <= -0.15:
			out = append(out, Adjustment{fmt.Sprintf("analyst target downside (%.0f%%)", pct), -minf(analysis.Round1(-upside/0.15*6), 6)})
		case signal == analysis.SignalSell && upside <= -0.15:
			out = append(out, Adjustment{fmt.Sprintf("analyst target downside (%.0f%%)", pct), minf(analysis.Round1(-upside/0.15*8), 8)})
		case signal == analysis.SignalSell && upside >= 0.15:
			out = append(out, Adjustment{fmt.Sprintf("analyst target upside (%.0f%%)", pct), -minf(analysis.Round1(upside/0.15*6), 6)})
		}
	}

	if rec := strings.ToLower(f.RecommendationKey); rec != "" {
		isBuy := contains(buyRecommendations, rec)
		isSell := contains(sellRecommendations, rec)
		switch {
		case signal == analysis.SignalBuy && isBuy, signal == analysis.SignalSell && isSell:
			out = append(out, Adjustment{fmt.Sprintf("analyst consensus aligned (%s)", rec), 5})
		case signal == analysis.SignalBuy && isSell, signal == analysis.SignalSell && isBuy:
			out = append(out, Adjustment{fmt.Sprintf("analyst consensus conflict (%s)", rec), -4})
		}
	}

	if f.EarningsGrowth != nil {
		growth := *f.EarningsGrowth
		pct := growth * 100
		switch {
		case signal == analysis.SignalBuy && growth >= 0.10:
			out = append(out, Adjustment{fmt.Sprintf("earnings growth (%.0f%%)", pct), minf(analysis.Round1(growth/0.10*5), 5)})
		case signal == analysis.SignalBuy && growth <= -0.10:
			out = append(out, Adjustment{fmt.Sprintf("earnings decline (%.0f%%)", pct), -minf(analysis.Round1(-growth/0.10*4), 4)})
		case signal == analysis.SignalSell && growth <= -0.10:
			out = append(out, Adjustment{fmt.Sprintf("earnings decline (%.0f%%)", pct), minf(analysis.Round1(-growth/0.10*5), 5)})
		case signal == analysis.SignalSell && growth >= 0.10:
			out = append(out, Adjustment{fmt.Sprintf("earnings growth (%.0f%%)", pct), -minf(analysis.Round1(growth/0.10*4), 4)})
		}
	}

	if f.ShortPercentOfFloat != nil && *f.ShortPercentOfFloat >= 0.10 && signal == analysis.SignalBuy {
		out = append(out, Adjustment{fmt.Sprintf("high short interest (%.0f%%)", *f.ShortPercentOfFloat*100), 5})
	}

	return out
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
