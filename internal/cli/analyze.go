package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"stocksense/internal/analysis/scoring"
	"stocksense/internal/config"
	"stocksense/internal/logging"
	"stocksense/internal/models"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var (
		csvPath          string
		symbol           string
		timeframe        string
		fundamentalsPath string
		save             bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a stock from OHLCV data",
		Long: `Run the full scoring pipeline over an OHLCV CSV file: candlestick and
chart patterns, support/resistance, volume behaviour, trend and RSI, combined
into a graded recommendation with entry, target and stop prices.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			candles, err := loadCandlesCSV(csvPath)
			if err != nil {
				return err
			}

			var fundamentals *models.Fundamentals
			if fundamentalsPath != "" {
				fundamentals, err = loadFundamentals(fundamentalsPath)
				if err != nil {
					return err
				}
			}

			logger := logging.WithSymbol(app.Logger, symbol)
			ctx := logging.WithLogger(context.Background(), logger)

			engine := scoring.NewEngineWith(analysisParams(app.Config))
			result, err := engine.Score(ctx, candles, fundamentals)
			if err != nil {
				return err
			}

			logging.LogAnalysis(logger, symbol, string(result.Signal), result.Grade, result.Confidence.Final)

			if save && app.Store != nil {
				if err := saveAnalysis(ctx, app, symbol, timeframe, candles, result); err != nil {
					output.Warning("Failed to save analysis: %v", err)
				} else {
					output.Dim("Analysis saved.")
				}
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			renderScoreReport(output, symbol, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "path to OHLCV CSV file (required)")
	cmd.Flags().StringVar(&symbol, "symbol", "UNKNOWN", "ticker symbol for logging and persistence")
	cmd.Flags().StringVar(&timeframe, "timeframe", "1day", "candle timeframe label")
	cmd.Flags().StringVar(&fundamentalsPath, "fundamentals", "", "path to fundamentals JSON file")
	cmd.Flags().BoolVar(&save, "save", false, "persist candles and the analysis result")
	cmd.MarkFlagRequired("csv")

	return cmd
}

// analysisParams maps the configured tunables onto engine parameters.
func analysisParams(cfg *config.Config) scoring.Params {
	if cfg == nil {
		return scoring.DefaultParams()
	}
	return scoring.Params{
		ExtremaOrder:   cfg.Analysis.ExtremaOrder,
		ClusterTolPct:  cfg.Analysis.ClusterTolPct,
		MinTouches:     cfg.Analysis.MinTouches,
		VolumeLookback: cfg.Analysis.VolumeLookback,
		ATRPeriod:      cfg.Analysis.ATRPeriod,
		RSIPeriod:      cfg.Analysis.RSIPeriod,
	}
}

func saveAnalysis(ctx context.Context, app *App, symbol, timeframe string, candles []models.Candle, result *scoring.ScoreResult) error {
	if err := app.Store.SaveCandles(ctx, symbol, timeframe, candles); err != nil {
		return err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return app.Store.SaveAnalysis(ctx, &models.SavedAnalysis{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Signal:     string(result.Signal),
		Grade:      result.Grade,
		Confidence: result.Confidence.Final,
		Result:     payload,
		CreatedAt:  time.Now().UTC(),
	})
}

func renderScoreReport(output *Output, symbol string, result *scoring.ScoreResult) {
	output.Bold("%s — %s (grade %s)", symbol, output.Signal(string(result.Signal)), result.Grade)
	output.Printf("Price %.2f | Score %.4f | Confidence %.1f (base %.1f)\n",
		result.CurrentPrice, result.TotalScore, result.Confidence.Final, result.Confidence.Base)
	output.Println()

	output.Bold("Signal Breakdown")
	table := NewTable(output, "Component", "Strength", "Weight", "Contribution")
	for _, name := range []string{
		scoring.ComponentChartPattern,
		scoring.ComponentSupportResistance,
		scoring.ComponentCandlestick,
		scoring.ComponentTrend,
		scoring.ComponentRSI,
		scoring.ComponentVolume,
	} {
		c := result.SignalBreakdown[name]
		table.AddRow(name,
			output.FormatPercent(c.Strength*100),
			fmt.Sprintf("%.2f", c.Weight),
			fmt.Sprintf("%+.4f", c.Contribution))
	}
	table.Render()
	output.Println()

	if len(result.Confidence.Adjustments) > 0 {
		output.Bold("Confidence Adjustments")
		for _, adj := range result.Confidence.Adjustments {
			output.Printf("  %+5.1f  %s\n", adj.Delta, adj.Factor)
		}
		output.Println()
	}

	output.Bold("Trade Plan")
	output.Printf("  Entry:  %.2f (-%.2f%%)\n", result.EntryPrice.Consensus, result.EntryPrice.DiscountPct)
	output.Printf("  Target: %.2f (primary %.2f)\n", result.Target.Consensus, result.Target.Primary)
	output.Printf("  Stop:   %.2f\n", result.StopLoss.Final)
	if result.RiskReward != nil {
		output.Printf("  R:R:    %.2f:1\n", *result.RiskReward)
	}
	output.Println()

	if signal := result.Details.Breakout; len(signal.Patterns) > 0 {
		p := signal.Patterns[0]
		output.Bold("Breakout Pullback")
		output.Printf("  %s (%.0f%%)", p.Label, p.Confidence)
		if p.BreakoutLevel != nil {
			output.Printf("  level %.2f", *p.BreakoutLevel)
		}
		if p.VolumeConfirmed {
			output.Printf("  volume-confirmed")
		}
		output.Println()
		output.Println()
	}

	output.Bold("Summary")
	for _, line := range result.Summary {
		output.Printf("  %s\n", line)
	}
}
