package scoring

import (
	"reflect"
	"testing"
)

func TestAggregateAllComponents(t *testing.T) {
	a := NewAggregator()
	signals := map[string]ComponentSignal{
		ComponentNewsSentiment:     {Strength: 0.8},
		ComponentCandlestick:       {Strength: 0.8},
		ComponentChartPattern:      {Strength: 0.8},
		ComponentSupportResistance: {Strength: 0.8},
		ComponentVolume:            {Strength: 0.8},
	}

	result := a.Aggregate(signals)

	if result.CompositeScore != 0.8 {
		t.Errorf("expected composite 0.8, got %v", result.CompositeScore)
	}
	if result.Action != "STRONG_BUY" {
		t.Errorf("expected STRONG_BUY, got %s", result.Action)
	}
	// Full agreement (1.0) blended with |composite|.
	if result.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %v", result.Confidence)
	}
	if len(result.ComponentScores) != 5 {
		t.Errorf("expected 5 component scores, got %v", result.ComponentScores)
	}
}

func TestAggregatePartialRenormalization(t *testing.T) {
	a := NewAggregator()
	signals := map[string]ComponentSignal{
		ComponentCandlestick:  {Strength: 0.5},
		ComponentChartPattern: {Strength: 0.5},
	}

	result := a.Aggregate(signals)

	// 0.5*0.45 weighted over 0.45 present weight: the partial set still
	// spans the full range.
	if result.CompositeScore != 0.5 {
		t.Errorf("expected composite 0.5, got %v", result.CompositeScore)
	}
	if result.Action != "BUY" {
		t.Errorf("expected BUY, got %s", result.Action)
	}
	if result.Confidence != 0.75 {
		t.Errorf("expected confidence 0.75, got %v", result.Confidence)
	}
	// Absent components still appear, scored zero.
	if len(result.ComponentScores) != 5 {
		t.Fatalf("expected 5 component scores, got %v", result.ComponentScores)
	}
	for _, name := range []string{ComponentNewsSentiment, ComponentSupportResistance, ComponentVolume} {
		if score, ok := result.ComponentScores[name]; !ok || score != 0 {
			t.Errorf("expected zero score for absent %s, got %v (present %v)", name, score, ok)
		}
	}
}

func TestAggregateActionThresholds(t *testing.T) {
	a := NewAggregator()
	tests := []struct {
		name     string
		strength float64
		want     string
	}{
		{"strong buy at 0.7", 0.7, "STRONG_BUY"},
		{"buy at 0.3", 0.3, "BUY"},
		{"hold below 0.3", 0.29, "HOLD"},
		{"hold at zero", 0, "HOLD"},
		{"sell at -0.3", -0.3, "SELL"},
		{"strong sell at -0.7", -0.7, "STRONG_SELL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.Aggregate(map[string]ComponentSignal{
				ComponentNewsSentiment: {Strength: tt.strength},
			})
			if result.Action != tt.want {
				t.Errorf("action = %s, want %s (composite %v)", result.Action, tt.want, result.CompositeScore)
			}
		})
	}
}

func TestAggregateWeakComponentContributes(t *testing.T) {
	a := NewAggregator()
	signals := map[string]ComponentSignal{
		ComponentNewsSentiment: {Strength: 0.15},
		ComponentChartPattern:  {Strength: 0.4},
	}

	result := a.Aggregate(signals)

	// (0.15*0.20 + 0.4*0.25) / 0.45: the weak component's strength still
	// carries its full weight in the composite.
	if result.CompositeScore != 0.2889 {
		t.Errorf("expected composite 0.2889, got %v", result.CompositeScore)
	}
	if result.ComponentScores[ComponentNewsSentiment] != 0.15 {
		t.Errorf("expected news score 0.15, got %v", result.ComponentScores[ComponentNewsSentiment])
	}
	if result.Action != "HOLD" {
		t.Errorf("expected HOLD, got %s", result.Action)
	}
}

func TestAggregateMixedSignals(t *testing.T) {
	a := NewAggregator()
	signals := map[string]ComponentSignal{
		ComponentNewsSentiment: {Strength: 0.6},
		ComponentVolume:        {Strength: -0.6},
	}

	result := a.Aggregate(signals)

	// (0.6*0.20 - 0.6*0.15) / 0.35
	if result.CompositeScore != 0.0857 {
		t.Errorf("expected composite 0.0857, got %v", result.CompositeScore)
	}
	if result.Action != "HOLD" {
		t.Errorf("expected HOLD, got %s", result.Action)
	}
	// Opposite directions cancel the agreement term entirely.
	if result.Confidence != 0.0429 {
		t.Errorf("expected confidence 0.0429, got %v", result.Confidence)
	}
}

func TestAggregateDeadband(t *testing.T) {
	a := NewAggregator()
	signals := map[string]ComponentSignal{
		ComponentCandlestick:  {Strength: 0.05}, // inside the ±0.1 deadband
		ComponentChartPattern: {Strength: 0.5},
	}

	result := a.Aggregate(signals)

	if result.CompositeScore != 0.3 {
		t.Errorf("expected composite 0.3, got %v", result.CompositeScore)
	}
	// Only one of two components counts toward agreement.
	if result.Confidence != 0.4 {
		t.Errorf("expected confidence 0.4, got %v", result.Confidence)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	result := NewAggregator().Aggregate(nil)

	if result.Action != "HOLD" || result.CompositeScore != 0 || result.Confidence != 0 {
		t.Errorf("expected neutral aggregate, got %+v", result)
	}
	if len(result.ComponentScores) != 5 {
		t.Fatalf("expected 5 zeroed component scores, got %v", result.ComponentScores)
	}
	for name, score := range result.ComponentScores {
		if score != 0 {
			t.Errorf("expected zero score for %s, got %v", name, score)
		}
	}
	if result.Reasoning != "Overall: HOLD (score 0.00)" {
		t.Errorf("unexpected reasoning: %q", result.Reasoning)
	}
}

func TestAggregateCustomWeights(t *testing.T) {
	a := NewAggregatorWithWeights(map[string]float64{
		ComponentNewsSentiment: 0,
		ComponentCandlestick:   -1,
		ComponentChartPattern:  1.0,
	})
	signals := map[string]ComponentSignal{
		ComponentNewsSentiment: {Strength: -0.9},
		ComponentCandlestick:   {Strength: -0.9},
		ComponentChartPattern:  {Strength: 0.6},
	}

	result := a.Aggregate(signals)

	// Zero and negative weights drop their components entirely.
	if len(result.ComponentScores) != 1 {
		t.Fatalf("expected one scored component, got %v", result.ComponentScores)
	}
	if result.CompositeScore != 0.6 || result.Action != "BUY" {
		t.Errorf("expected BUY/0.6, got %s/%v", result.Action, result.CompositeScore)
	}
}

func TestAggregateReasoning(t *testing.T) {
	a := NewAggregator()
	signals := map[string]ComponentSignal{
		ComponentCandlestick:       {Strength: 0.5},
		ComponentNewsSentiment:     {Strength: -0.4},
		ComponentSupportResistance: {Strength: 0.15}, // inside the ±0.2 neutral band
	}

	result := a.Aggregate(signals)

	want := "Overall: HOLD (score 0.08)\nDetail: candlestick: buy signal (strength 50.0%) | news sentiment: sell signal (strength 40.0%) | support/resistance: neutral"
	if result.Reasoning != want {
		t.Errorf("reasoning mismatch:\ngot  %q\nwant %q", result.Reasoning, want)
	}
}

func TestAggregateDeterminism(t *testing.T) {
	a := NewAggregator()
	signals := map[string]ComponentSignal{
		ComponentNewsSentiment:     {Strength: 0.42},
		ComponentCandlestick:       {Strength: -0.37},
		ComponentChartPattern:      {Strength: 0.66},
		ComponentSupportResistance: {Strength: 0.2},
		ComponentVolume:            {Strength: 0.11},
	}

	first := a.Aggregate(signals)
	for i := 0; i < 10; i++ {
		if next := a.Aggregate(signals); !reflect.DeepEqual(first, next) {
			t.Fatalf("aggregate not deterministic:\nfirst %+v\nnext  %+v", first, next)
		}
	}
}
