package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/budget-mapper/internal/engine"
	"github.com/Veraticus/budget-mapper/internal/model"
	"github.com/Veraticus/budget-mapper/internal/telemetry"
)

const maxDescriptionWidth = 40

// WriteStats prints mapping statistics with a per-category breakdown.
func WriteStats(w io.Writer, stats *model.MappingStats) error {
	if stats.FileName == "" && stats.TotalRows == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No file imported yet. Run 'budget import <file>' first."))
		return err
	}

	percent := 0.0
	if stats.TotalRows > 0 {
		percent = float64(stats.MappedRows) / float64(stats.TotalRows) * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", stats.FileName)
	fmt.Fprintf(&b, "Mapped: %d of %d (%.0f%%)\n", stats.MappedRows, stats.TotalRows, percent)
	fmt.Fprintf(&b, "Remaining: %d\n", stats.RemainingRows)
	if !stats.LastUpdated.IsZero() {
		fmt.Fprintf(&b, "Last updated: %s", stats.LastUpdated.Local().Format(time.DateTime))
	}
	if _, err := fmt.Fprintln(w, RenderBox(ChartIcon+" Mapping Progress", b.String())); err != nil {
		return err
	}

	if len(stats.CategoryBreakdown) == 0 {
		return nil
	}

	names := make([]string, 0, len(stats.CategoryBreakdown))
	for name := range stats.CategoryBreakdown {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := stats.CategoryBreakdown[names[i]], stats.CategoryBreakdown[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", TableHeaderStyle.Render("Category"), TableHeaderStyle.Render("Rows"))
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%d\n", TableCellStyle.Render(name), stats.CategoryBreakdown[name])
	}
	return tw.Flush()
}

// WriteCategories lists category names.
func WriteCategories(w io.Writer, categories []model.Category) error {
	if len(categories) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No categories found. Use 'budget categories add' to create one."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", TableHeaderStyle.Render("ID"), TableHeaderStyle.Render("Name"))
	for _, cat := range categories {
		fmt.Fprintf(tw, "%d\t%s\n", cat.ID, cat.Name)
	}
	return tw.Flush()
}

// WriteOutcomes prints one line per row of a bulk result in input order.
func WriteOutcomes(w io.Writer, rows []engine.IndexedRow, result *engine.BulkResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		TableHeaderStyle.Render("Row"),
		TableHeaderStyle.Render("Description"),
		TableHeaderStyle.Render("Suggestion"))

	for _, row := range rows {
		outcome, ok := result.Mappings[row.Index]
		if !ok {
			continue
		}
		description := truncate(row.Data.Transaction().Description, maxDescriptionWidth)
		fmt.Fprintf(tw, "%d\t%s\t%s\n", row.Index, description, FormatOutcome(outcome))
	}
	return tw.Flush()
}

// FormatOutcome renders a suggestion or its failure.
func FormatOutcome(outcome model.RowOutcome) string {
	switch {
	case outcome.Suggestion != nil:
		return SuccessStyle.Render(*outcome.Suggestion)
	case outcome.Error != nil:
		return ErrorStyle.Render(ErrorIcon + " " + outcome.Error.Error())
	default:
		return SubtleStyle.Render("(none)")
	}
}

// RenderBulkSummary renders the closing box for a bulk run.
func RenderBulkSummary(result *engine.BulkResult, summary telemetry.Summary, applied int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s\n", result.RunID)
	fmt.Fprintf(&b, "  • Rows processed: %d\n", result.ProcessedCount)
	fmt.Fprintf(&b, "  • Suggested: %d\n", result.SuccessCount)
	fmt.Fprintf(&b, "  • Without suggestion: %d\n", result.UnmappedCount)
	fmt.Fprintf(&b, "  • Batches: %d\n", result.BatchCount)
	if summary.BackendCalls > 0 {
		avg := time.Duration(summary.BackendSeconds / float64(summary.BackendCalls) * float64(time.Second))
		fmt.Fprintf(&b, "  • Model calls: %d (%d failed, avg %s)\n",
			summary.BackendCalls, summary.BackendFailed, avg.Round(time.Millisecond))
	}
	if applied > 0 {
		fmt.Fprintf(&b, "  • Saved as suggestions: %d\n", applied)
	}
	fmt.Fprintf(&b, "  • Time taken: %s", result.Duration.Round(time.Second))

	title := RobotIcon + " Bulk Suggestions Complete"
	if result.Canceled {
		title = WarningIcon + " Bulk Suggestions Interrupted"
	}
	return RenderBox(title, b.String())
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
