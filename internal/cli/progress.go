package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// ImportProgress reports deposit ingestion progress on a terminal.
type ImportProgress struct {
	bar       *progressbar.ProgressBar
	writer    io.Writer
	saved     int
	duplicate int
	failed    int
}

// NewImportProgress creates a progress bar for total deposits.
func NewImportProgress(w io.Writer, total int) *ImportProgress {
	p := &ImportProgress{writer: w}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Classifying deposits...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Saved records a stored deposit.
func (p *ImportProgress) Saved() { p.saved++; p.step() }

// Duplicate records a deposit that was already stored.
func (p *ImportProgress) Duplicate() { p.duplicate++; p.step() }

// Failed records a deposit that could not be stored.
func (p *ImportProgress) Failed() { p.failed++; p.step() }

func (p *ImportProgress) step() {
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Counts returns saved, duplicate and failed totals.
func (p *ImportProgress) Counts() (saved, duplicate, failed int) {
	return p.saved, p.duplicate, p.failed
}

// Finish completes the bar and prints a summary box.
func (p *ImportProgress) Finish() {
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}

	summary := fmt.Sprintf("  • Saved: %d\n  • Already imported: %d\n  • Failed: %d",
		p.saved, p.duplicate, p.failed)
	if _, err := fmt.Fprintln(p.writer, RenderBox("Import Complete", summary)); err != nil {
		slog.Warn("Failed to write import summary", "error", err)
	}
}
