package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budget-mapper/internal/cli"
	"github.com/Veraticus/budget-mapper/internal/engine"
	"github.com/Veraticus/budget-mapper/internal/model"
)

func bulkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Suggest categories for every unmapped row",
		Long: `Bulk sends unmapped rows to the model in batches of five. Each batch
sees the confirmed mappings plus the suggestions made earlier in the run.

Suggestions are only shown unless --apply is given, in which case they are
stored on the rows as unconfirmed categories. Press Ctrl+C to stop after the
current batch.`,
		Args: cobra.NoArgs,
		RunE: runBulk,
	}
	cmd.Flags().Bool("apply", false, "store suggestions on the rows (they stay unconfirmed)")
	cmd.Flags().IntP("limit", "n", 0, "only process the first n unmapped rows (0 = all)")
	cmd.Flags().BoolP("verbose", "v", false, "print the outcome for every row")
	return cmd
}

func runBulk(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	apply, _ := cmd.Flags().GetBool("apply")
	limit, _ := cmd.Flags().GetInt("limit")
	verbose, _ := cmd.Flags().GetBool("verbose")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	unmapped, err := a.store.UnmappedRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to load unmapped rows: %w", err)
	}
	if len(unmapped) == 0 {
		fmt.Fprintln(out, cli.FormatSuccess("All rows are mapped"))
		return nil
	}
	rows := indexedRows(unmapped, limit)

	names, err := a.categoryNames(ctx)
	if err != nil {
		return err
	}
	history, err := a.store.History(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	suggester, err := a.suggester(ctx)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "budget bulk")
	runCtx, stop := handler.HandleInterrupts(ctx)
	defer stop()

	progress := cli.NewBulkProgress(cmd.ErrOrStderr(), len(rows))
	result, err := a.orchestrator(suggester, progress.Update).RunBulk(runCtx, rows, names, history)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// runCtx may be canceled; persistence uses the command context.
	applied := 0
	if apply {
		if applied, err = a.store.ApplySuggestions(ctx, successfulSuggestions(result)); err != nil {
			return fmt.Errorf("failed to save suggestions: %w", err)
		}
	}

	if verbose {
		if err := cli.WriteOutcomes(out, rows, result); err != nil {
			return err
		}
	}

	summary, err := a.collector.Summary(ctx)
	if err != nil {
		a.logger.Warn("failed to collect run metrics", "error", err)
	}
	fmt.Fprintln(out, cli.RenderBulkSummary(result, summary, applied))
	return nil
}

// indexedRows converts stored rows, keeping at most limit when limit > 0.
func indexedRows(rows []model.MappedRow, limit int) []engine.IndexedRow {
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	out := make([]engine.IndexedRow, len(rows))
	for i, row := range rows {
		out[i] = engine.IndexedRow{Index: row.Index, Data: row.Data}
	}
	return out
}

func successfulSuggestions(result *engine.BulkResult) map[int]string {
	suggestions := make(map[int]string, result.SuccessCount)
	for idx, outcome := range result.Mappings {
		if outcome.Suggestion != nil {
			suggestions[idx] = *outcome.Suggestion
		}
	}
	return suggestions
}
