package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// BulkProgress renders bulk run progress as a terminal bar. Update matches
// engine.ProgressFunc.
type BulkProgress struct {
	writer    io.Writer
	bar       *progressbar.ProgressBar
	processed int
	mu        sync.Mutex
}

// NewBulkProgress creates a bar for total rows.
func NewBulkProgress(writer io.Writer, total int) *BulkProgress {
	p := &BulkProgress{writer: writer}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Suggesting categories...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(writer); err != nil {
				slog.Warn("failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Update moves the bar to processed rows. Counts that do not advance are ignored.
func (p *BulkProgress) Update(processed, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if processed <= p.processed {
		return
	}
	if err := p.bar.Add(processed - p.processed); err != nil {
		slog.Warn("failed to update progress bar", "error", err)
	}
	p.processed = processed
}

// Processed returns the last reported count.
func (p *BulkProgress) Processed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed
}
