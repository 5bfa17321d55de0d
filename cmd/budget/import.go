package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budget-mapper/internal/cli"
	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/ingest"
	"github.com/Veraticus/budget-mapper/internal/model"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV or JSON bank statement",
		Long: `Import reads a statement file and registers every row for mapping.

Rows are keyed by their position in the file. Importing a file again keeps
the categories already assigned to existing rows.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	parsed, err := ingest.LoadFile(args[0])
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnsupportedFormat):
			return common.NewUserError("Unsupported file format. Use CSV or JSON", err)
		case errors.Is(err, common.ErrNoRows):
			return common.NewUserError("The file contains no transactions", err)
		}
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	previous, err := a.store.FindImport(ctx, parsed.Hash)
	switch {
	case err == nil:
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%s was already imported on %s; existing mappings are kept",
			previous.FileName, previous.ImportedAt.Local().Format(time.DateTime))))
	case errors.Is(err, common.ErrNotFound):
		if _, err := a.store.RecordImport(ctx, model.FileImport{
			Hash:     parsed.Hash,
			FileName: parsed.FileName,
			RowCount: len(parsed.Rows),
		}); err != nil {
			return fmt.Errorf("failed to record import: %w", err)
		}
	default:
		return fmt.Errorf("failed to check previous imports: %w", err)
	}

	if err := a.store.InitRows(ctx, parsed.FileName, parsed.Rows); err != nil {
		return fmt.Errorf("failed to store rows: %w", err)
	}

	for _, rowErr := range parsed.Errors {
		slog.Warn("skipped malformed row", "file", parsed.FileName, "error", rowErr)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d rows from %s", len(parsed.Rows), parsed.FileName)))
	if parsed.Skipped > 0 {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Skipped %d rows without transaction data", parsed.Skipped)))
	}

	stats, err := a.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d of %d rows mapped", stats.MappedRows, stats.TotalRows)))
	return nil
}
