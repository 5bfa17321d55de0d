package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budget-mapper/internal/cli"
)

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the imported rows and their mappings",
		Long: `Reset removes every imported row and mapping. Categories and the record
of imported files are kept.`,
		Args: cobra.NoArgs,
		RunE: runReset,
	}
	cmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")
	return cmd
}

func runReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	force, _ := cmd.Flags().GetBool("force")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	stats, err := a.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if stats.TotalRows == 0 {
		fmt.Fprintln(out, "No rows imported. Nothing to reset.")
		return nil
	}

	if !force {
		fmt.Fprintf(out, "This will delete %d rows (%d mapped).\n", stats.TotalRows, stats.MappedRows)
		ok, err := cli.Confirm(ctx, cli.NewLineReader(cmd.InOrStdin()), out, "Are you sure you want to continue?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Reset canceled.")
			return nil
		}
	}

	if err := a.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Reset %d rows", stats.TotalRows)))
	return nil
}
