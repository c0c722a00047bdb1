package quote

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/andyballingall/rustfmt-quote/internal/fs"
	"github.com/andyballingall/rustfmt-quote/internal/rustfmt"
)

// Mode controls whether a Rewriter writes its results back to disk.
type Mode int

const (
	// ModeWrite rewrites files whose blocks changed.
	ModeWrite Mode = iota
	// ModeDryRun never writes; changed files carry their new content instead.
	ModeDryRun
)

// rewriteFile is a variable for fs.RewriteFile to allow mocking in tests.
var rewriteFile = fs.RewriteFile

// FileResult describes what happened to one file.
type FileResult struct {
	Path    string
	Changed bool

	Blocks    int // quote! bodies found
	Formatted int // bodies whose text changed
	Skipped   int // bodies rejected by the Filter
	Failed    int // bodies the formatter could not handle

	// Unterminated is set when the file ends inside a quote! block.
	Unterminated bool

	// Original and Result are only populated for changed files in ModeDryRun.
	Original []byte
	Result   []byte

	// Err is set by batch callers when the file could not be processed.
	Err error
}

// Rewriter runs the scan, disguise, format and splice pipeline over files.
type Rewriter struct {
	formatter   rustfmt.Formatter
	filter      *Filter
	logger      *slog.Logger
	indentWidth int
}

// NewRewriter creates a Rewriter which formats blocks accepted by filter
// with formatter.
func NewRewriter(formatter rustfmt.Formatter, filter *Filter, logger *slog.Logger) *Rewriter {
	return &Rewriter{
		formatter:   formatter,
		filter:      filter,
		logger:      logger.With("component", "rewriter"),
		indentWidth: DefaultIndentWidth,
	}
}

// SetIndentWidth sets the number of spaces per nesting level of the source.
// It defaults to DefaultIndentWidth.
func (r *Rewriter) SetIndentWidth(n int) {
	if n > 0 {
		r.indentWidth = n
	}
}

// RewriteFile formats every quote! block in the file at path. The file is
// written once, and only if at least one block changed. Per-block formatter
// failures are logged and leave that block untouched; only I/O failures and
// cancellation are returned as errors.
func (r *Rewriter) RewriteFile(ctx context.Context, path string, mode Mode) (*FileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadFileError{Path: path, Wrapped: err}
	}

	out, res, err := r.RewriteSource(ctx, path, string(data))
	if err != nil {
		return nil, err
	}
	if !res.Changed {
		return res, nil
	}

	if mode == ModeDryRun {
		res.Original = data
		res.Result = []byte(out)
		return res, nil
	}

	if err := rewriteFile(path, []byte(out)); err != nil {
		return nil, &WriteFileError{Path: path, Wrapped: err}
	}
	r.logger.Debug("rewrote file", "path", path, "blocks", res.Formatted)
	return res, nil
}

// RewriteSource is RewriteFile without the file system: name is only used in
// diagnostics. It returns the new source, which equals src when nothing
// changed.
func (r *Rewriter) RewriteSource(ctx context.Context, name, src string) (string, *FileResult, error) {
	res := &FileResult{Path: name}

	segments, err := Scan(SplitLines(src), r.indentWidth)
	var ube *UnterminatedBlockError
	if errors.As(err, &ube) {
		res.Unterminated = true
		r.logger.Warn("quote! block is never closed, leaving it unchanged",
			"path", name, "line", ube.Line)
	}

	for _, seg := range segments {
		if seg.Block == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}

		res.Blocks++
		text, outcome, fErr := r.formatBlock(ctx, name, seg.Block)
		if fErr != nil {
			return "", nil, fErr
		}
		switch outcome {
		case outcomeChanged:
			res.Formatted++
			res.Changed = true
			seg.Block.Lines = SplitLines(text)
		case outcomeSkipped:
			res.Skipped++
		case outcomeFailed:
			res.Failed++
		}
	}

	if !res.Changed {
		return src, res, nil
	}
	return Join(segments), res, nil
}

type blockOutcome int

const (
	outcomeUnchanged blockOutcome = iota
	outcomeChanged
	outcomeSkipped
	outcomeFailed
)

// formatBlock works on the body with "\n" terminators, which is what rustfmt
// emits, and puts CRLF terminators back on a changed CRLF body.
func (r *Rewriter) formatBlock(ctx context.Context, name string, b *Block) (string, blockOutcome, error) {
	text := b.Text()
	crlf := len(b.Lines) > 0 && strings.HasSuffix(b.Lines[0], "\r\n")
	body := strings.ReplaceAll(text, "\r\n", "\n")
	log := r.logger.With("path", name, "line", b.StartLine)

	if reason := r.filter.Reason(body); reason != SkipNone {
		log.Debug("skipping quote! block", "reason", string(reason))
		return text, outcomeSkipped, nil
	}

	disguised := Disguise(body, b.Depth)
	out, err := r.formatter.Format(ctx, disguised)
	if err != nil {
		if ctx.Err() != nil {
			return "", outcomeFailed, ctx.Err()
		}
		log.Error("rustfmt could not format quote! block", "error", err, "input", disguised)
		return text, outcomeFailed, nil
	}

	// rustfmt folds a blank body into its wrapper line, so nothing is left of it.
	var formatted string
	if strings.TrimSpace(body) != "" {
		formatted, err = Undisguise(out, b.Depth)
		if err != nil {
			log.Error("rustfmt output could not be unwrapped", "error", err, "input", disguised)
			return text, outcomeFailed, nil
		}
	}

	if formatted == body {
		return text, outcomeUnchanged, nil
	}
	if crlf {
		formatted = strings.ReplaceAll(formatted, "\n", "\r\n")
	}
	return formatted, outcomeChanged, nil
}
