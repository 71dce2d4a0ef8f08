package scoring

import (
	"fmt"
	"sort"

	"stocksense/internal/analysis"
	"stocksense/internal/analysis/indicators"
	"stocksense/internal/analysis/patterns"
)

// PriceMethod is one candidate price with the method that produced it.
type PriceMethod struct {
	Method    string  `json:"method"`
	Price     float64 `json:"price"`
	Rationale string  `json:"rationale,omitempty"`
}

// EntryPlan is the multi-method entry recommendation.
type EntryPlan struct {
	Methods     []PriceMethod `json:"methods"`
	Consensus   float64       `json:"consensus"`
	DiscountPct float64       `json:"discount_pct"`
}

// TargetPlan is the multi-method upside target.
type TargetPlan struct {
	Methods   []PriceMethod `json:"methods"`
	Consensus float64       `json:"consensus"`
	Primary   float64       `json:"primary"`
}

// StopPlan reconciles the ATR stop with the nearest support below base.
type StopPlan struct {
	ATRStop float64  `json:"atr_stop"`
	SRStop  *float64 `json:"sr_stop"`
	Final   float64  `json:"final"`
}

// fibEntryNames are the retracement levels considered for entries and SELL
// recovery targets, shallow to deep.
var fibEntryNames = []string{"0.236", "0.382", "0.5", "0.618"}

// entryPlan builds the recommended buy price from support, an ATR pullback,
// the EMA20 retest and the nearest Fibonacci retracement below price. A
// SELL signal replaces the set with a deep-correction method, reflecting
// that a sell implies waiting for a lower re-entry.
func (e *Engine) entryPlan(signal analysis.Signal, sr patterns.LevelReport, atr float64, trend indicators.Trend, fib indicators.FibLevels, price float64) EntryPlan {
	var methods []PriceMethod

	if sr.NearestSupport != nil && *sr.NearestSupport > 0 && *sr.NearestSupport < price {
		methods = append(methods, PriceMethod{
			Method:    "Support",
			Price:     analysis.Round2(*sr.NearestSupport),
			Rationale: "buy on a pullback into the nearest support level",
		})
	}

	if atr > 0 && price-atr > 0 {
		methods = append(methods, PriceMethod{
			Method:    "ATR pullback",
			Price:     analysis.Round2(price - atr),
			Rationale: fmt.Sprintf("buy after a one-bar average-range (%.0f) correction", atr),
		})
	}

	if trend.EMA20 > 0 && trend.EMA20 < price {
		methods = append(methods, PriceMethod{
			Method:    "EMA20",
			Price:     analysis.Round2(trend.EMA20),
			Rationale: "buy on a retest of the 20-bar EMA",
		})
	}

	// Highest Fibonacci retracement below the current price.
	var bestFib float64
	var bestName string
	for _, name := range fibEntryNames {
		level, ok := fib.Levels[name]
		if ok && level > 0 && level < price && level > bestFib {
			bestFib = level
			bestName = name
		}
	}
	if bestName != "" {
		methods = append(methods, PriceMethod{
			Method:    "Fib " + bestName,
			Price:     analysis.Round2(bestFib),
			Rationale: fmt.Sprintf("buy at the %s Fibonacci retracement", bestName),
		})
	}

	if signal == analysis.SignalSell && atr > 0 {
		deep := price - 2.0*atr
		if deep > 0 {
			methods = []PriceMethod{{
				Method:    "Deep correction",
				Price:     analysis.Round2(deep),
				Rationale: "sell signal: reassess after a 2x ATR decline",
			}}
			if level, ok := fib.Levels["0.618"]; ok && level > 0 && level < price {
				methods = append(methods, PriceMethod{
					Method:    "Fib 0.618",
					Price:     analysis.Round2(level),
					Rationale: "wait for the 0.618 Fibonacci retracement",
				})
			}
		}
	}

	var consensus float64
	if len(methods) > 0 {
		consensus = analysis.Round2(median(methodPrices(methods)))
	} else {
		// No technical reference nearby: fall back to a flat 3% discount.
		consensus = analysis.Round2(price * 0.97)
		methods = []PriceMethod{{
			Method:    "Default discount",
			Price:     consensus,
			Rationale: "no technical support nearby: 3% below the current price",
		}}
	}

	discountPct := 0.0
	if price > 0 {
		discountPct = analysis.Round2((price - consensus) / price * 100)
	}

	return EntryPlan{Methods: methods, Consensus: consensus, DiscountPct: discountPct}
}

// targetPlan derives upside targets from the base price: nearest resistance,
// a 2x ATR projection, a Fibonacci level and the chart pattern projection.
// sellBase selects the conservative recovery targets used when the base is
// a SELL re-entry price rather than the current price.
func (e *Engine) targetPlan(sr patterns.LevelReport, chart patterns.ChartSignal, atr float64, fib indicators.FibLevels, price float64, sellBase bool) TargetPlan {
	var methods []PriceMethod

	if sr.NearestResistance != nil && *sr.NearestResistance > price {
		methods = append(methods, PriceMethod{Method: "S/R", Price: analysis.Round2(*sr.NearestResistance)})
	}

	if atr > 0 {
		methods = append(methods, PriceMethod{Method: "ATR(2x)", Price: analysis.Round2(price + 2.0*atr)})
	}

	if sellBase {
		// Nearest retracement above the re-entry price.
		var bestFib float64
		var bestName string
		for _, name := range fibEntryNames {
			level, ok := fib.Levels[name]
			if ok && level > price && (bestName == "" || level < bestFib) {
				bestFib = level
				bestName = name
			}
		}
		if bestName != "" {
			methods = append(methods, PriceMethod{Method: "Fib " + bestName, Price: analysis.Round2(bestFib)})
		}
	} else {
		if ext, ok := fib.Levels["ext_1.272"]; ok && ext > price {
			methods = append(methods, PriceMethod{Method: "Fib 1.272", Price: analysis.Round2(ext)})
		} else if high, ok := fib.Levels["0.0"]; ok && high > price {
			methods = append(methods, PriceMethod{Method: "Fib 0.0 (swing high)", Price: analysis.Round2(high)})
		}
	}

	if chart.TargetPrice != nil && *chart.TargetPrice > price {
		methods = append(methods, PriceMethod{Method: "Pattern", Price: analysis.Round2(*chart.TargetPrice)})
	}

	var consensus float64
	if len(methods) > 0 {
		consensus = analysis.Round2(median(methodPrices(methods)))
	} else {
		consensus = analysis.Round2(price + 2.0*atr)
	}

	primary := consensus
	if len(methods) > 0 {
		primary = methods[0].Price
	}

	return TargetPlan{Methods: methods, Consensus: consensus, Primary: primary}
}

// stopPlan places the stop 1.5 ATR below base, tightened to the nearest
// support below base when that sits higher.
func (e *Engine) stopPlan(sr patterns.LevelReport, atr float64, price float64) StopPlan {
	atrStop := price - 1.5*atr

	plan := StopPlan{ATRStop: analysis.Round2(atrStop), Final: analysis.Round2(atrStop)}
	if sr.NearestSupport != nil && *sr.NearestSupport > 0 && *sr.NearestSupport < price {
		srStop := analysis.Round2(*sr.NearestSupport)
		plan.SRStop = &srStop
		if srStop > atrStop {
			plan.Final = srStop
		}
	}
	return plan
}

// riskReward is reward distance over risk distance from the entry. Nil when
// the risk distance is zero.
func riskReward(entry, target, stop float64) *float64 {
	reward := target - entry
	if reward < 0 {
		reward = -reward
	}
	risk := entry - stop
	if risk < 0 {
		risk = -risk
	}
	if risk == 0 {
		return nil
	}
	rr := analysis.Round2(reward / risk)
	return &rr
}

func methodPrices(methods []PriceMethod) []float64 {
	prices := make([]float64, len(methods))
	for i, m := range methods {
		prices[i] = m.Price
	}
	return prices
}

// median returns the middle value of values, averaging the two central
// elements for even counts.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
