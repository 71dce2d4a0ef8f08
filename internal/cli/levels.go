package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stocksense/internal/analysis"
	"stocksense/internal/analysis/patterns"
)

func newLevelsCmd(app *App) *cobra.Command {
	var (
		csvPath string
		symbol  string
	)

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Report support and resistance levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			candles, err := loadCandlesCSV(csvPath)
			if err != nil {
				return err
			}

			detector := patterns.NewSupportResistanceDetector()
			if cfg := app.Config; cfg != nil {
				detector = patterns.NewSupportResistanceDetectorWith(
					cfg.Analysis.ExtremaOrder, cfg.Analysis.ClusterTolPct/100, cfg.Analysis.MinTouches)
			}
			signal := detector.Signal(candles)

			if output.IsJSON() {
				return output.JSON(signal)
			}

			output.Bold("%s — price %.2f, signal %s (%.4f)",
				symbol, signal.CurrentPrice, output.Signal(string(signal.Signal)), signal.Strength)
			output.Println()

			output.Bold("Support")
			renderLevels(output, signal.SupportLevels)
			output.Println()

			output.Bold("Resistance")
			renderLevels(output, signal.ResistanceLevels)

			if len(signal.RoleReversals) > 0 {
				output.Println()
				output.Bold("Role Reversals")
				for _, rr := range signal.RoleReversals {
					output.Printf("  %.2f now acting as %s (%d crossings)\n", rr.Price, rr.CurrentRole, rr.Crossings)
				}
			}

			if signal.NearestSupport != nil {
				output.Println()
				output.Printf("Nearest support %.2f (%.2f%% below)\n", *signal.NearestSupport, *signal.SupportDistancePct)
			}
			if signal.NearestResistance != nil {
				output.Printf("Nearest resistance %.2f (%.2f%% above)\n", *signal.NearestResistance, *signal.ResistanceDistancePct)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "path to OHLCV CSV file (required)")
	cmd.Flags().StringVar(&symbol, "symbol", "UNKNOWN", "ticker symbol for display")
	cmd.MarkFlagRequired("csv")

	return cmd
}

func renderLevels(output *Output, levels []analysis.Level) {
	if len(levels) == 0 {
		output.Dim("  none")
		return
	}
	table := NewTable(output, "Price", "Touches")
	for _, l := range levels {
		table.AddRow(fmt.Sprintf("%.2f", l.Price), fmt.Sprintf("%d", l.Touches))
	}
	table.Render()
}
