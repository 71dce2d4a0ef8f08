package cli

import (
	"context"

	"github.com/spf13/cobra"

	apperrors "stocksense/internal/errors"
)

func newWatchlistCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage symbol watchlists",
	}

	var listName string

	addCmd := &cobra.Command{
		Use:   "add <symbol>",
		Short: "Add a symbol to a watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			output := NewOutput(cmd)
			symbol := args[0]
			if err := app.Store.AddToWatchlist(context.Background(), symbol, listName); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"added": symbol, "list": listName})
			}
			output.Success("Added %s to %s", symbol, listName)
			return nil
		},
	}
	addCmd.Flags().StringVar(&listName, "list", "default", "watchlist name")
	cmd.AddCommand(addCmd)

	var removeList string
	removeCmd := &cobra.Command{
		Use:   "remove <symbol>",
		Short: "Remove a symbol from a watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			output := NewOutput(cmd)
			symbol := args[0]
			if err := app.Store.RemoveFromWatchlist(context.Background(), symbol, removeList); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"removed": symbol, "list": removeList})
			}
			output.Success("Removed %s from %s", symbol, removeList)
			return nil
		},
	}
	removeCmd.Flags().StringVar(&removeList, "list", "default", "watchlist name")
	cmd.AddCommand(removeCmd)

	var showList string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show watchlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			output := NewOutput(cmd)
			ctx := context.Background()

			if showList != "" {
				symbols, err := app.Store.GetWatchlist(ctx, showList)
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(map[string][]string{showList: symbols})
				}
				renderWatchlist(output, showList, symbols)
				return nil
			}

			all, err := app.Store.GetAllWatchlists(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(all)
			}
			if len(all) == 0 {
				output.Dim("No watchlists.")
				return nil
			}
			for name, symbols := range all {
				renderWatchlist(output, name, symbols)
				output.Println()
			}
			return nil
		},
	}
	showCmd.Flags().StringVar(&showList, "list", "", "show a single watchlist")
	cmd.AddCommand(showCmd)

	return cmd
}

func renderWatchlist(output *Output, name string, symbols []string) {
	output.Bold("%s (%d)", name, len(symbols))
	for i, symbol := range symbols {
		output.Printf("  %2d. %s\n", i+1, symbol)
	}
	if len(symbols) == 0 {
		output.Dim("  empty")
	}
}
