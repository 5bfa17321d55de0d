package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budget-mapper/internal/cli"
	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/storage"
)

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <row>",
		Short: "Ask the model for one row's category",
		Long: `Suggest sends a single row to the model together with your confirmed
mappings as examples and prints the suggested category.`,
		Args: cobra.ExactArgs(1),
		RunE: runSuggest,
	}
	cmd.Flags().Bool("save", false, "store the suggestion on the row (it stays unconfirmed)")
	return cmd
}

func parseRowIndex(arg string) (int, error) {
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 0 {
		return 0, common.NewUserError(fmt.Sprintf("Invalid row number %q", arg), storage.ErrInvalidRowIndex)
	}
	return idx, nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	idx, err := parseRowIndex(args[0])
	if err != nil {
		return err
	}
	save, _ := cmd.Flags().GetBool("save")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	row, err := a.store.Row(ctx, idx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("Row %d not found", idx), err)
		}
		return err
	}

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

	txn := row.Data.Transaction()
	result := suggester.Suggest(ctx, txn, names, history)
	if !result.Success {
		return common.NewUserError(fmt.Sprintf("No suggestion for row %d", idx), result.Err())
	}

	fmt.Fprintf(out, "%s %s\n", cli.RobotIcon, cli.FormatTitle(fmt.Sprintf("Row %d: %s", idx, txn.Description)))
	fmt.Fprintln(out, cli.FormatSuccess("Suggested category: "+result.Category))

	if save {
		if _, err := a.store.ApplySuggestions(ctx, map[int]string{idx: result.Category}); err != nil {
			return fmt.Errorf("failed to save suggestion: %w", err)
		}
		fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("Saved. Confirm with: budget map %d %q", idx, result.Category)))
	}
	return nil
}
