package scoring

import (
	"fmt"
	"sort"
	"strings"

	"stocksense/internal/analysis"
)

// Component names understood by the aggregator.
const (
	ComponentNewsSentiment = "news_sentiment"
)

// componentLabels maps component keys to display names used in reasoning text.
var componentLabels = map[string]string{
	ComponentNewsSentiment:     "news sentiment",
	ComponentCandlestick:       "candlestick",
	ComponentChartPattern:      "chart pattern",
	ComponentSupportResistance: "support/resistance",
	ComponentVolume:            "volume",
}

// ComponentSignal is one detector's contribution to an aggregate decision.
// Strength is signed: positive leans buy, negative leans sell.
type ComponentSignal struct {
	Strength   float64 `json:"strength"`
	Confidence float64 `json:"confidence"`
}

// Aggregate is the combined decision over a set of component signals.
type Aggregate struct {
	Action          string             `json:"action"`
	Confidence      float64            `json:"confidence"`
	CompositeScore  float64            `json:"composite_score"`
	ComponentScores map[string]float64 `json:"component_signals"`
	Reasoning       string             `json:"reasoning"`
}

// Aggregator combines weighted component signals into a single action.
// Missing components score zero and drop out of the weighting; the remaining
// weights are renormalized so a partial set of detectors still produces a
// full-range score.
type Aggregator struct {
	weights map[string]float64
}

// DefaultAggregatorWeights returns the standard component weighting.
func DefaultAggregatorWeights() map[string]float64 {
	return map[string]float64{
		ComponentNewsSentiment:     0.20,
		ComponentCandlestick:       0.20,
		ComponentChartPattern:      0.25,
		ComponentSupportResistance: 0.20,
		ComponentVolume:            0.15,
	}
}

// NewAggregator builds an aggregator with the default weights.
func NewAggregator() *Aggregator {
	return &Aggregator{weights: DefaultAggregatorWeights()}
}

// NewAggregatorWithWeights builds an aggregator with custom weights.
// Unknown component names are accepted; zero or negative weights drop the
// component entirely.
func NewAggregatorWithWeights(weights map[string]float64) *Aggregator {
	w := make(map[string]float64, len(weights))
	for k, v := range weights {
		if v > 0 {
			w[k] = v
		}
	}
	return &Aggregator{weights: w}
}

// Aggregate combines the supplied component signals into one decision.
// Every weighted component appears in ComponentScores; absent ones score
// zero and their weight is excluded from the normalization denominator.
func (a *Aggregator) Aggregate(signals map[string]ComponentSignal) Aggregate {
	scores := make(map[string]float64, len(a.weights))
	weighted := 0.0
	totalWeight := 0.0

	keys := make([]string, 0, len(a.weights))
	for k := range a.weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		sig, ok := signals[name]
		if !ok {
			scores[name] = 0
			continue
		}
		scores[name] = analysis.Round4(sig.Strength)
		weighted += sig.Strength * a.weights[name]
		totalWeight += a.weights[name]
	}

	composite := 0.0
	if totalWeight > 0 {
		if totalWeight < 1 {
			composite = weighted / totalWeight
		} else {
			composite = weighted
		}
	}
	if composite > 1 {
		composite = 1
	} else if composite < -1 {
		composite = -1
	}
	composite = analysis.Round4(composite)

	action := actionFor(composite)
	confidence := analysis.Round4(agreementConfidence(signals, composite))

	return Aggregate{
		Action:          action,
		Confidence:      confidence,
		CompositeScore:  composite,
		ComponentScores: scores,
		Reasoning:       reasoning(action, composite, signals),
	}
}

func actionFor(composite float64) string {
	switch {
	case composite >= 0.7:
		return "STRONG_BUY"
	case composite >= 0.3:
		return "BUY"
	case composite <= -0.7:
		return "STRONG_SELL"
	case composite <= -0.3:
		return "SELL"
	default:
		return "HOLD"
	}
}

// agreementConfidence blends how strongly the supplied components agree on a
// direction with the magnitude of the composite score. Strengths within ±0.1
// of zero are treated as directionless.
func agreementConfidence(signals map[string]ComponentSignal, composite float64) float64 {
	if len(signals) == 0 {
		return 0
	}
	sum := 0.0
	for _, sig := range signals {
		switch {
		case sig.Strength > 0.1:
			sum++
		case sig.Strength < -0.1:
			sum--
		}
	}
	agreement := abs(sum) / float64(len(signals))
	confidence := 0.5*agreement + 0.5*abs(composite)
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

func reasoning(action string, composite float64, signals map[string]ComponentSignal) string {
	keys := make([]string, 0, len(signals))
	for k := range signals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	details := make([]string, 0, len(keys))
	for _, name := range keys {
		strength := signals[name].Strength
		label := componentLabels[name]
		if label == "" {
			label = strings.ReplaceAll(name, "_", " ")
		}
		switch {
		case strength > 0.2:
			details = append(details, fmt.Sprintf("%s: buy signal (strength %.1f%%)", label, strength*100))
		case strength < -0.2:
			details = append(details, fmt.Sprintf("%s: sell signal (strength %.1f%%)", label, abs(strength)*100))
		default:
			details = append(details, fmt.Sprintf("%s: neutral", label))
		}
	}

	reason := fmt.Sprintf("Overall: %s (score %.2f)", action, composite)
	if len(details) > 0 {
		reason += "\nDetail: " + strings.Join(details, " | ")
	}
	return reason
}
