package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/andyballingall/rustfmt-quote/internal/quote"
	"github.com/andyballingall/rustfmt-quote/internal/report"
	"github.com/andyballingall/rustfmt-quote/internal/runner"
)

// ErrChangesRequired is returned in check mode when at least one file is not
// formatted.
var ErrChangesRequired = errors.New("quote! blocks need formatting")

// RunOptions controls a single formatting run.
type RunOptions struct {
	// Check and Diff leave files untouched. Check also fails the run if
	// anything would change.
	Check bool
	Diff  bool

	Verbose   bool
	Format    string // text or json
	UseColour bool
}

// Mode is the quote.Mode implied by the options.
func (o RunOptions) Mode() quote.Mode {
	if o.Check || o.Diff {
		return quote.ModeDryRun
	}
	return quote.ModeWrite
}

// Manager defines the business logic behind the command line.
type Manager interface {
	FormatPaths(ctx context.Context, paths []string, opts RunOptions) error
	WatchPaths(ctx context.Context, paths []string, opts RunOptions, readyChan chan<- struct{}) error
}

// Ensure the interface is satisfied.
var _ Manager = (*LazyManager)(nil)

// LazyManager acts as a placeholder for a real Manager implementation, allowing
// for deferred initialization of dependencies.
type LazyManager struct {
	inner Manager
}

func (l *LazyManager) SetInner(m Manager) {
	l.inner = m
}

// HasInner returns true if the inner manager has been set.
// This is used by PersistentPreRunE to skip initialization if already configured (e.g., in tests).
func (l *LazyManager) HasInner() bool {
	return l.inner != nil
}

func (l *LazyManager) check() Manager {
	if l.inner == nil {
		panic("LazyManager accessed before initialization; check command wiring.")
	}
	return l.inner
}

func (l *LazyManager) FormatPaths(ctx context.Context, paths []string, opts RunOptions) error {
	return l.check().FormatPaths(ctx, paths, opts)
}

func (l *LazyManager) WatchPaths(ctx context.Context, paths []string, opts RunOptions,
	readyChan chan<- struct{},
) error {
	return l.check().WatchPaths(ctx, paths, opts, readyChan)
}

// Ensure the interface is satisfied.
var _ Manager = (*CLIManager)(nil)

// CLIManager is the concrete implementation of the Manager interface.
type CLIManager struct {
	logger         *slog.Logger
	runner         *runner.Runner
	reporterWriter io.Writer
}

func NewCLIManager(l *slog.Logger, r *runner.Runner, w io.Writer) *CLIManager {
	return &CLIManager{
		logger:         l,
		runner:         r,
		reporterWriter: w,
	}
}

func reporterFor(opts RunOptions) runner.Reporter {
	if opts.Format == "json" {
		return &report.JSONReporter{}
	}
	return &report.TextReporter{Verbose: opts.Verbose, UseColour: opts.UseColour, Diff: opts.Diff}
}

// FormatPaths formats every file under paths once and reports the result.
func (m *CLIManager) FormatPaths(ctx context.Context, paths []string, opts RunOptions) error {
	m.logger.Debug("formatting paths", "paths", paths, "check", opts.Check, "diff", opts.Diff,
		"verbose", opts.Verbose, "format", opts.Format, "useColour", opts.UseColour)

	m.runner.SetMode(opts.Mode())
	rep, err := m.runner.Run(ctx, paths)
	if err != nil {
		return err
	}

	if wErr := reporterFor(opts).Write(m.reporterWriter, rep); wErr != nil {
		return wErr
	}

	if changed := len(rep.Changed()); opts.Check && changed > 0 {
		return fmt.Errorf("%w: %d file(s) would be reformatted", ErrChangesRequired, changed)
	}
	return nil
}

// WatchPaths formats every file under paths, then keeps formatting source
// files as they are saved until ctx is cancelled.
// If you want to know when the watcher is ready to start listening to changes,
// pass a non-nil readyChan to be notified.
func (m *CLIManager) WatchPaths(ctx context.Context, paths []string, opts RunOptions,
	readyChan chan<- struct{},
) error {
	if opts.Check {
		return errors.New("--check cannot be used with --watch")
	}
	if err := m.FormatPaths(ctx, paths, opts); err != nil {
		return err
	}

	watcher := runner.NewWatcher(m.runner.Searcher(paths), m.logger)
	reporter := reporterFor(opts)

	callback := func(path string) {
		m.logger.Debug("File changed:", "path", path)
		rep, err := m.runner.RunFile(ctx, path)
		if err != nil {
			if ctx.Err() == nil {
				m.logger.Error("Formatting failed", "path", path, "error", err)
			}
			return
		}
		if len(rep.Changed()) == 0 && rep.Totals().Errors == 0 {
			return
		}
		if rErr := reporter.Write(m.reporterWriter, rep); rErr != nil {
			m.logger.Error("Failed to write report", "error", rErr)
		}
	}

	// Forward watcher Ready signal if caller wants notification
	if readyChan != nil {
		go func() {
			select {
			case <-watcher.Ready:
				readyChan <- struct{}{}
			case <-ctx.Done():
			}
		}()
	}

	return watcher.Watch(ctx, callback)
}
