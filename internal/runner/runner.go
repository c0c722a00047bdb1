package runner

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andyballingall/rustfmt-quote/internal/quote"
)

// FileRewriter formats the quote! blocks of a single file.
type FileRewriter interface {
	RewriteFile(ctx context.Context, path string, mode quote.Mode) (*quote.FileResult, error)
}

// Ensure the interface is satisfied.
var _ FileRewriter = (*quote.Rewriter)(nil)

// Runner formats every file a Searcher finds.
type Runner struct {
	rewriter FileRewriter
	logger   *slog.Logger

	mode        quote.Mode
	numWorkers  int
	extensions  []string
	excludeDirs []string
}

// NewRunner creates a runner which writes changed files back to disk, using
// one worker per available CPU and the default file filters.
func NewRunner(rw FileRewriter, logger *slog.Logger) *Runner {
	return &Runner{
		rewriter:    rw,
		logger:      logger.With("component", "runner"),
		mode:        quote.ModeWrite,
		numWorkers:  runtime.GOMAXPROCS(0),
		extensions:  []string{".rs"},
		excludeDirs: []string{".git", "target"},
	}
}

// SetMode controls whether changed files are written. It defaults to
// quote.ModeWrite.
func (r *Runner) SetMode(m quote.Mode) {
	r.mode = m
}

// SetNumWorkers controls how many files are formatted at once. Values below
// one are ignored.
func (r *Runner) SetNumWorkers(n int) {
	if n > 0 {
		r.numWorkers = n
	}
}

// SetFilters sets the extensions a walked file must have, and the names of
// directories that are never walked into.
func (r *Runner) SetFilters(extensions, excludeDirs []string) {
	r.extensions = extensions
	r.excludeDirs = excludeDirs
}

// Searcher returns a Searcher over paths using the runner's filters.
func (r *Runner) Searcher(paths []string) *Searcher {
	return NewSearcher(paths, r.extensions, r.excludeDirs)
}

// Run formats every file found under paths. A file that cannot be read or
// written is recorded in the report with its error and does not stop the
// run; only cancellation does. The report lists files in the order they
// were found, whatever order the workers finish in.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	report := NewReport()
	report.StartTime = time.Now()
	defer func() { report.EndTime = time.Now() }()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.numWorkers)

	var mu sync.Mutex
	var files []*quote.FileResult
	set := func(i int, res *quote.FileResult) {
		mu.Lock()
		defer mu.Unlock()
		files[i] = res
	}

	for found := range r.Searcher(paths).Files(gctx) {
		mu.Lock()
		i := len(files)
		files = append(files, nil)
		mu.Unlock()

		if found.Err != nil {
			r.logger.Error("Failed to search path", "path", found.Path, "error", found.Err)
			set(i, &quote.FileResult{Path: found.Path, Err: found.Err})
			continue
		}

		path := found.Path
		g.Go(func() error {
			res, err := r.processFile(gctx, path)
			if err != nil {
				return err
			}
			set(i, res)
			return nil
		})
	}

	err := g.Wait()
	report.Files = compact(files)

	// A cancelled caller takes priority over whatever the workers saw.
	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	if err != nil {
		return report, err
	}
	return report, nil
}

// RunFile formats a single file, as Run does for each file it finds.
func (r *Runner) RunFile(ctx context.Context, path string) (*Report, error) {
	report := NewReport()
	report.StartTime = time.Now()
	defer func() { report.EndTime = time.Now() }()

	res, err := r.processFile(ctx, path)
	if err != nil {
		return report, err
	}
	report.Files = append(report.Files, res)
	return report, nil
}

// processFile only fails on cancellation. Other failures are carried in the
// result.
func (r *Runner) processFile(ctx context.Context, path string) (*quote.FileResult, error) {
	r.logger.Debug("formatting file", "path", path)

	res, err := r.rewriter.RewriteFile(ctx, path, r.mode)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil, err
	}

	r.logger.Error("Failed to format file", "path", path, "error", err)
	return &quote.FileResult{Path: path, Err: err}, nil
}

// compact drops the slots of workers that were cancelled before finishing.
func compact(files []*quote.FileResult) []*quote.FileResult {
	out := make([]*quote.FileResult, 0, len(files))
	for _, f := range files {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}
