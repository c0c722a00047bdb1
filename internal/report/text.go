package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andyballingall/rustfmt-quote/internal/quote"
	"github.com/andyballingall/rustfmt-quote/internal/runner"
)

// ChangedPrefix starts the line printed for every file that was, or would
// be, reformatted.
const ChangedPrefix = "rustfmt_quote"

// TextReporter implements runner.Reporter for plain text output.
type TextReporter struct {
	Verbose   bool
	UseColour bool
	// Diff adds a unified diff after each changed file. It needs the content
	// kept by a dry run.
	Diff bool
}

func (tr *TextReporter) Write(w io.Writer, r *runner.Report) error {
	p := newPalette(tr.UseColour)

	for _, f := range r.Changed() {
		fmt.Fprintf(w, "%s %s\n", ChangedPrefix, f.Path)
		if !tr.Diff || f.Result == nil {
			continue
		}
		diff, err := UnifiedDiff(f.Path, f.Original, f.Result)
		if err != nil {
			return fmt.Errorf("failed to diff %s: %w", f.Path, err)
		}
		fmt.Fprint(w, colourDiff(p, diff))
	}

	if tr.Verbose {
		tr.writeSummary(w, p, r)
	}
	return nil
}

func (tr *TextReporter) writeSummary(w io.Writer, p *palette, r *runner.Report) {
	divider := strings.Repeat("-", 40)
	t := r.Totals()

	fmt.Fprintln(w, divider)
	for _, f := range r.Files {
		if note := problem(f); note != "" {
			fmt.Fprintf(w, "%s %s: %s\n", p.bad.Sprint("!"), p.muted.Sprint(f.Path), note)
		}
	}

	stats := fmt.Sprintf("%d of %d files changed, %d of %d blocks formatted, %d skipped, %d failed",
		t.Changed, t.Files, t.Formatted, t.Blocks, t.Skipped, t.Failed)
	statsColour := p.good
	if t.Failed > 0 || t.Errors > 0 || t.Unterminated > 0 {
		statsColour = p.bad
	}
	fmt.Fprintf(w, "%s%s\n", p.header.Sprint("Summary: "), statsColour.Sprint(stats))
	fmt.Fprintf(w, "%s %s\n", p.muted.Sprint("Duration:"), r.Duration().Round(time.Millisecond))
	fmt.Fprintln(w, divider)
}

func problem(f *quote.FileResult) string {
	var notes []string
	if f.Err != nil {
		notes = append(notes, f.Err.Error())
	}
	if f.Failed > 0 {
		notes = append(notes, fmt.Sprintf("%d block(s) could not be formatted", f.Failed))
	}
	if f.Unterminated {
		notes = append(notes, "unterminated quote! block")
	}
	return strings.Join(notes, "; ")
}
