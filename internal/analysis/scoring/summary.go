package scoring

import (
	"fmt"
	"strings"

	"stocksense/internal/analysis"
	"stocksense/internal/analysis/indicators"
	"stocksense/internal/models"
)

// summaryInput gathers everything the narrative generator needs.
type summaryInput struct {
	signal       analysis.Signal
	trend        indicators.Trend
	rsi          float64
	atr          float64
	currentPrice float64
	entry        EntryPlan
	target       TargetPlan
	stop         StopPlan
	riskReward   *float64
	details      Details
	strengths    map[string]float64
	fundamentals *models.Fundamentals
}

// summary builds the deterministic four-section narrative: market state,
// technical signals, optional fundamentals, and the trade guide.
func (e *Engine) summary(in summaryInput) []string {
	var lines []string
	lines = append(lines, e.summaryState(in))
	lines = append(lines, e.summarySignals(in))
	if fund := e.summaryFundamentals(in); fund != "" {
		lines = append(lines, fund)
	}
	if guide := e.summaryTradeGuide(in); guide != "" {
		lines = append(lines, guide)
	}
	return lines
}

func (e *Engine) summaryState(in summaryInput) string {
	name := "The stock"
	if in.fundamentals != nil && in.fundamentals.ShortName != "" {
		name = in.fundamentals.ShortName
		if in.fundamentals.Sector != "" {
			name = fmt.Sprintf("%s (%s)", name, in.fundamentals.Sector)
		}
	}

	var trendDesc string
	switch in.trend.Direction {
	case indicators.TrendUp:
		adj := ""
		if in.trend.Strength >= 0.7 {
			adj = "strong "
		}
		trendDesc = fmt.Sprintf("in a %suptrend (strength %.0f%%)", adj, in.trend.Strength*100)
	case indicators.TrendDown:
		adj := ""
		if in.trend.Strength >= 0.7 {
			adj = "strong "
		}
		trendDesc = fmt.Sprintf("in a %sdowntrend (strength %.0f%%)", adj, in.trend.Strength*100)
	default:
		trendDesc = "moving sideways"
	}

	e20 := fmt.Sprintf("%+.2f%%", in.trend.PriceVsEMA20Pct)
	e50 := fmt.Sprintf("%+.2f%%", in.trend.PriceVsEMA50Pct)
	var emaDesc string
	switch {
	case in.trend.PriceVsEMA20Pct >= 0 && in.trend.PriceVsEMA50Pct >= 0:
		emaDesc = fmt.Sprintf("Trading above both EMA20 (%s) and EMA50 (%s).", e20, e50)
	case in.trend.PriceVsEMA20Pct < 0 && in.trend.PriceVsEMA50Pct < 0:
		emaDesc = fmt.Sprintf("Trading below both EMA20 (%s) and EMA50 (%s), showing weakness.", e20, e50)
	default:
		emaDesc = fmt.Sprintf("Trading around EMA20 (%s) and EMA50 (%s).", e20, e50)
	}

	return fmt.Sprintf("%s trades at %.2f, %s. %s", name, in.currentPrice, trendDesc, emaDesc)
}

func (e *Engine) summarySignals(in summaryInput) string {
	var patternNames []string
	for _, p := range in.details.Candlestick.Patterns {
		patternNames = append(patternNames, fmt.Sprintf("%s (%.0f%%)", p.Label, p.Confidence))
	}
	for _, p := range in.details.ChartPattern.Patterns {
		patternNames = append(patternNames, fmt.Sprintf("%s (%.0f%%)", p.Label, p.Confidence))
	}

	var parts []string
	if len(patternNames) > 0 {
		shown := patternNames
		extra := ""
		if len(shown) > 4 {
			extra = fmt.Sprintf(" and %d more", len(shown)-4)
			shown = shown[:4]
		}
		list := strings.Join(shown, ", ") + extra
		switch in.signal {
		case analysis.SignalBuy:
			parts = append(parts, fmt.Sprintf("%s patterns form a buy signal", list))
		case analysis.SignalSell:
			parts = append(parts, fmt.Sprintf("%s patterns form a strong sell signal", list))
		default:
			parts = append(parts, fmt.Sprintf("%s patterns detected", list))
		}
	}

	if in.details.Volume.OBVSignal == in.signal && in.signal != analysis.SignalHold {
		dir := "buy"
		if in.signal == analysis.SignalSell {
			dir = "sell"
		}
		parts = append(parts, fmt.Sprintf("volume supports the %s direction", dir))
	}

	// Unanimous core-signal consensus.
	coreKeys := []string{ComponentCandlestick, ComponentChartPattern, ComponentSupportResistance, ComponentVolume}
	var nonZero []float64
	for _, k := range coreKeys {
		if s := in.strengths[k]; s != 0 {
			nonZero = append(nonZero, s)
		}
	}
	if len(nonZero) >= 3 {
		aligned := 0
		for _, s := range nonZero {
			if (in.signal == analysis.SignalBuy && s > 0) || (in.signal == analysis.SignalSell && s < 0) {
				aligned++
			}
		}
		if aligned == len(nonZero) && aligned >= 3 {
			dir := "higher"
			if in.signal == analysis.SignalSell {
				dir = "lower"
			}
			parts = append(parts, fmt.Sprintf("all %d core signals point %s", aligned, dir))
		}
	}

	var warnings []string
	switch {
	case in.rsi >= 65 && in.rsi <= 70:
		warnings = append(warnings, fmt.Sprintf("RSI (%.0f) is approaching the overbought zone", in.rsi))
	case in.rsi > 70:
		warnings = append(warnings, fmt.Sprintf("RSI (%.0f) is in the overbought zone", in.rsi))
	case in.rsi >= 30 && in.rsi <= 35:
		warnings = append(warnings, fmt.Sprintf("RSI (%.0f) is approaching the oversold zone", in.rsi))
	case in.rsi < 30:
		warnings = append(warnings, fmt.Sprintf("RSI (%.0f) is in the oversold zone", in.rsi))
	}
	if in.details.Volume.Divergence {
		warnings = append(warnings, "a price-volume divergence is present")
	}
	atrPct := 0.0
	if in.currentPrice > 0 {
		atrPct = in.atr / in.currentPrice * 100
	}
	if atrPct > 5.0 {
		warnings = append(warnings, fmt.Sprintf("volatility (%.1f%%) is very high", atrPct))
	} else if atrPct > 3.0 {
		warnings = append(warnings, fmt.Sprintf("volatility (%.1f%%) is somewhat elevated", atrPct))
	}
	if len(warnings) > 2 {
		warnings = warnings[:2]
	}

	switch {
	case len(parts) > 0 && len(warnings) > 0:
		return fmt.Sprintf("%s. However, %s; beware of a short-term pullback.",
			strings.Join(parts, ". "), strings.Join(warnings, " and "))
	case len(parts) > 0:
		return strings.Join(parts, ". ") + "."
	case len(warnings) > 0:
		return fmt.Sprintf("%s; caution is advised.", strings.Join(warnings, " and "))
	default:
		return "No notable technical signals detected."
	}
}

func (e *Engine) summaryFundamentals(in summaryInput) string {
	f := in.fundamentals
	if f == nil {
		return ""
	}
	var parts []string

	if f.EarningsGrowth != nil {
		pct := *f.EarningsGrowth * 100
		switch {
		case pct >= 50:
			parts = append(parts, fmt.Sprintf("earnings growth of %.0f%% shows a strong improvement in results", pct))
		case pct >= 10:
			parts = append(parts, fmt.Sprintf("earnings growth of %.0f%% shows improving results", pct))
		case pct <= -10:
			parts = append(parts, fmt.Sprintf("earnings growth of %.0f%% raises concern about deteriorating results", pct))
		}
	}

	if rec := strings.ToLower(f.RecommendationKey); rec != "" {
		switch {
		case in.signal == analysis.SignalBuy && contains(sellRecommendations, rec):
			parts = append(parts, fmt.Sprintf("the analyst consensus (%s) conflicts with the technical signal", rec))
		case in.signal == analysis.SignalSell && contains(buyRecommendations, rec):
			if f.EarningsGrowth != nil && *f.EarningsGrowth > 0 {
				kept := parts[:0]
				for _, p := range parts {
					if !strings.Contains(p, "earnings growth") {
						kept = append(kept, p)
					}
				}
				parts = append(kept, fmt.Sprintf(
					"the analyst consensus (%s) conflicts with the technical signal, and despite %.0f%% earnings growth the chart shows dominant selling pressure",
					rec, *f.EarningsGrowth*100))
			} else {
				parts = append(parts, fmt.Sprintf("the analyst consensus (%s) conflicts with the technical signal", rec))
			}
		}
	}

	if f.TargetMeanPrice > 0 && in.currentPrice > 0 {
		upside := (f.TargetMeanPrice - in.currentPrice) / in.currentPrice * 100
		if upside >= 10 || upside <= -10 {
			parts = append(parts, fmt.Sprintf("the mean analyst target is %.2f (%+.0f%% from here)", f.TargetMeanPrice, upside))
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ". ") + "."
}

func (e *Engine) summaryTradeGuide(in summaryInput) string {
	var parts []string
	if in.entry.Consensus > 0 {
		parts = append(parts, fmt.Sprintf("Suggested entry %.2f (-%.2f%%)", in.entry.Consensus, in.entry.DiscountPct))
	}
	if in.target.Consensus > 0 {
		parts = append(parts, fmt.Sprintf("target %.2f", in.target.Consensus))
	}
	if in.stop.Final > 0 {
		parts = append(parts, fmt.Sprintf("stop %.2f", in.stop.Final))
	}
	if in.riskReward != nil {
		rr := fmt.Sprintf("(R:R %.2f:1)", *in.riskReward)
		if len(parts) > 0 {
			parts[len(parts)-1] += " " + rr
		} else {
			parts = append(parts, rr)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ") + "."
}
