// Package runner drives a quote.Rewriter over a set of paths: it discovers
// the Rust sources to process, formats them in parallel, collects a Report
// and can keep watching the tree for further edits.
package runner

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// SearchResult is a file found by a Searcher, or the error met while
// looking for one.
type SearchResult struct {
	Path string
	Err  error
}

// Searcher resolves the paths given on the command line to source files.
// File paths are used as given. Directories are walked, skipping excluded
// directory names and files without one of the wanted extensions.
type Searcher struct {
	roots       []string
	extensions  []string
	excludeDirs []string
}

// NewSearcher creates a searcher over roots. With no roots the current
// directory is walked.
func NewSearcher(roots, extensions, excludeDirs []string) *Searcher {
	if len(roots) == 0 {
		roots = []string{"."}
	}
	return &Searcher{
		roots:       roots,
		extensions:  extensions,
		excludeDirs: excludeDirs,
	}
}

// Files walks every root and streams what it finds over a channel, so that
// files can be formatted while the walk is still going. A path reachable
// from more than one root is only reported once. Errors for individual
// paths are reported in-band and the walk carries on.
func (s *Searcher) Files(ctx context.Context) <-chan SearchResult {
	resC := make(chan SearchResult, 1)

	if s == nil {
		go func() {
			defer close(resC)
			resC <- SearchResult{Err: errors.New("searcher is nil")}
		}()
		return resC
	}

	go func() {
		defer close(resC)

		seen := make(map[string]struct{})
		for _, root := range s.roots {
			err := filepath.WalkDir(root, s.walkFunc(ctx, root, seen, resC))
			if err != nil {
				return
			}
		}
	}()

	return resC
}

func (s *Searcher) walkFunc(
	ctx context.Context, root string, seen map[string]struct{}, resC chan<- SearchResult,
) fs.WalkDirFunc {
	emit := func(r SearchResult) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case resC <- r:
			return nil
		}
	}

	return func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return emit(SearchResult{Path: path, Err: err})
		}

		if d.IsDir() {
			if path != root && s.Excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		// Explicitly named files are taken as they are.
		if path != root && !s.Wanted(path) {
			return nil
		}

		key := filepath.Clean(path)
		if _, ok := seen[key]; ok {
			return nil
		}
		seen[key] = struct{}{}

		return emit(SearchResult{Path: displayPath(root, path)})
	}
}

// displayPath keeps the "./" of a walk from the current directory, so that
// walking "." yields ./src/lib.rs rather than src/lib.rs.
func displayPath(root, path string) string {
	if filepath.Clean(root) != "." || !filepath.IsLocal(path) {
		return path
	}
	return "." + string(filepath.Separator) + filepath.Clean(path)
}

// Wanted reports whether a file found while walking a directory should be
// formatted.
func (s *Searcher) Wanted(path string) bool {
	ext := filepath.Ext(path)
	return ext != "" && slices.Contains(s.extensions, ext)
}

// Excluded reports whether a directory with the given base name is skipped.
func (s *Searcher) Excluded(name string) bool {
	return slices.Contains(s.excludeDirs, name)
}

// excludedBelow reports whether dir, or any directory between root and dir,
// is excluded. root itself never is.
func (s *Searcher) excludedBelow(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if s.Excluded(part) {
			return true
		}
	}
	return false
}
