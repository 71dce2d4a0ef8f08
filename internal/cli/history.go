package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "stocksense/internal/errors"
	"stocksense/internal/store"
)

func newHistoryCmd(app *App) *cobra.Command {
	var (
		symbol string
		signal string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			output := NewOutput(cmd)

			analyses, err := app.Store.GetAnalyses(context.Background(), store.AnalysisFilter{
				Symbol: symbol,
				Signal: signal,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(analyses)
			}

			if len(analyses) == 0 {
				output.Dim("No saved analyses.")
				return nil
			}

			table := NewTable(output, "Date", "Symbol", "Signal", "Grade", "Confidence", "ID")
			for _, a := range analyses {
				table.AddRow(
					a.CreatedAt.Format("2006-01-02 15:04"),
					a.Symbol,
					output.Signal(a.Signal),
					a.Grade,
					fmt.Sprintf("%.1f", a.Confidence),
					a.ID,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	cmd.Flags().StringVar(&signal, "signal", "", "filter by signal (BUY/SELL/HOLD)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")

	return cmd
}
