// Package report writes the outcome of a rustfmt-quote run as text or JSON.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/andyballingall/rustfmt-quote/internal/runner"
)

// JSONReporter implements runner.Reporter for JSON output.
type JSONReporter struct{}

type jsonFile struct {
	Path         string `json:"path"`
	Changed      bool   `json:"changed"`
	Blocks       int    `json:"blocks"`
	Formatted    int    `json:"formatted"`
	Skipped      int    `json:"skipped"`
	Failed       int    `json:"failed"`
	Unterminated bool   `json:"unterminated"`
	Error        string `json:"error,omitempty"`
}

type jsonOutput struct {
	StartTime string        `json:"startTime"`
	EndTime   string        `json:"endTime"`
	Duration  string        `json:"duration"`
	Totals    runner.Totals `json:"totals"`
	Files     []jsonFile    `json:"files"`
}

func (jr *JSONReporter) Write(w io.Writer, r *runner.Report) error {
	out := jsonOutput{
		StartTime: r.StartTime.Format(time.RFC3339),
		EndTime:   r.EndTime.Format(time.RFC3339),
		Duration:  r.Duration().String(),
		Totals:    r.Totals(),
		Files:     make([]jsonFile, 0, len(r.Files)),
	}

	for _, f := range r.Files {
		jf := jsonFile{
			Path:         f.Path,
			Changed:      f.Changed,
			Blocks:       f.Blocks,
			Formatted:    f.Formatted,
			Skipped:      f.Skipped,
			Failed:       f.Failed,
			Unterminated: f.Unterminated,
		}
		if f.Err != nil {
			jf.Error = f.Err.Error()
		}
		out.Files = append(out.Files, jf)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
