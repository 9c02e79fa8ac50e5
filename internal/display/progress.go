// Package display provides terminal output helpers for the ctxgen CLI:
// progress stepping for the summarize loop and formatted warnings.
package display

import (
	"fmt"
	"io"
)

// ProgressInterval controls how often the summarize loop reports progress.
const ProgressInterval = 50

// ProgressIndicator reports periodic progress while summarizing files.
type ProgressIndicator struct {
	writer  io.Writer
	total   int
	current int
}

// NewProgressIndicator creates a progress indicator for total items.
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer: w,
		total:  total,
	}
}

// Step records one processed file and prints a progress line every
// ProgressInterval files.
func (p *ProgressIndicator) Step() {
	p.current++
	if p.current%ProgressInterval == 0 {
		fmt.Fprintf(p.writer, "  Processed %d/%d files...\n", p.current, p.total)
	}
}

// Complete displays the final count with a green checkmark.
func (p *ProgressIndicator) Complete() {
	fmt.Fprintf(p.writer, "\x1b[32m✓\x1b[0m Summarized %d files\n", p.current)
}
