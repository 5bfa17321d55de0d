package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budget-mapper/internal/cli"
	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/storage"
)

func mapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map <row> <category>",
		Short: "Confirm a row's category",
		Long: `Map assigns a category to a row and marks it confirmed. Confirmed rows
are used as examples for later suggestions.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runMap,
	}
}

func runMap(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	idx, err := parseRowIndex(args[0])
	if err != nil {
		return err
	}
	category := strings.Join(args[1:], " ")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	row, err := a.store.MapRow(ctx, idx, category)
	switch {
	case errors.Is(err, storage.ErrInvalidCategory):
		return common.NewUserError("Invalid category", err)
	case errors.Is(err, common.ErrNotFound):
		return common.NewUserError("Row not found", err)
	case err != nil:
		return fmt.Errorf("failed to map row: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Row %d mapped to %s", row.Index, row.Category)))
	return nil
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show mapping progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.store.Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to load stats: %w", err)
			}
			return cli.WriteStats(cmd.OutOrStdout(), stats)
		},
	}
}
