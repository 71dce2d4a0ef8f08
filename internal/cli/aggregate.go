package cli

import (
	"github.com/spf13/cobra"

	"stocksense/internal/analysis/scoring"
)

// aggregateFlags maps flag names to aggregator component names.
var aggregateFlags = []struct {
	flag      string
	component string
	usage     string
}{
	{"news", scoring.ComponentNewsSentiment, "news sentiment strength (-1 to 1)"},
	{"candle", scoring.ComponentCandlestick, "candlestick strength (-1 to 1)"},
	{"chart", scoring.ComponentChartPattern, "chart pattern strength (-1 to 1)"},
	{"sr", scoring.ComponentSupportResistance, "support/resistance strength (-1 to 1)"},
	{"volume", scoring.ComponentVolume, "volume strength (-1 to 1)"},
}

func newAggregateCmd(app *App) *cobra.Command {
	values := make(map[string]*float64, len(aggregateFlags))

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Combine component signal strengths into one action",
		Long: `Combine weighted component strengths (including an external news
sentiment score) into a composite action. Components whose flag is not set
are treated as missing: they score zero and their weight is renormalized
away.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			signals := make(map[string]scoring.ComponentSignal)
			for _, af := range aggregateFlags {
				if !cmd.Flags().Changed(af.flag) {
					continue
				}
				signals[af.component] = scoring.ComponentSignal{Strength: *values[af.flag]}
			}

			aggregator := scoring.NewAggregator()
			if len(app.Config.Aggregator.Weights) > 0 {
				aggregator = scoring.NewAggregatorWithWeights(app.Config.Aggregator.Weights)
			}
			result := aggregator.Aggregate(signals)

			app.Logger.Debug().
				Str("action", result.Action).
				Float64("composite", result.CompositeScore).
				Int("components", len(signals)).
				Msg("Aggregation complete")

			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Bold("Action: %s", output.Signal(result.Action))
			output.Printf("Composite: %+.4f | Confidence: %.4f\n", result.CompositeScore, result.Confidence)
			output.Println()
			output.Println(result.Reasoning)
			return nil
		},
	}

	for _, af := range aggregateFlags {
		values[af.flag] = cmd.Flags().Float64(af.flag, 0, af.usage)
	}

	return cmd
}
