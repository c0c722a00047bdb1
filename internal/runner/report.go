package runner

import (
	"io"
	"time"

	"github.com/andyballingall/rustfmt-quote/internal/quote"
)

// Reporter writes a Report in some output format.
type Reporter interface {
	Write(w io.Writer, r *Report) error
}

// Report is the outcome of formatting a set of files.
type Report struct {
	StartTime time.Time
	EndTime   time.Time
	Files     []*quote.FileResult
}

// Totals sums the per-file counters of a Report.
type Totals struct {
	Files        int `json:"files"`
	Changed      int `json:"changed"`
	Blocks       int `json:"blocks"`
	Formatted    int `json:"formatted"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`
	Unterminated int `json:"unterminated"`
	Errors       int `json:"errors"`
}

func NewReport() *Report {
	return &Report{}
}

// Changed returns the files whose content changed, in report order.
func (r *Report) Changed() []*quote.FileResult {
	var changed []*quote.FileResult
	for _, f := range r.Files {
		if f.Changed {
			changed = append(changed, f)
		}
	}
	return changed
}

func (r *Report) Totals() Totals {
	var t Totals
	for _, f := range r.Files {
		t.Files++
		if f.Err != nil {
			t.Errors++
			continue
		}
		if f.Changed {
			t.Changed++
		}
		if f.Unterminated {
			t.Unterminated++
		}
		t.Blocks += f.Blocks
		t.Formatted += f.Formatted
		t.Skipped += f.Skipped
		t.Failed += f.Failed
	}
	return t
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
