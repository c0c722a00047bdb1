package runner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"
)

// DebounceDuration is how long the watcher waits for a burst of file system
// events to settle before acting on it.
const DebounceDuration = 100 * time.Millisecond

// eventWatcher is the part of *fsnotify.Watcher used by Watcher.
type eventWatcher interface {
	Add(name string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

type fsnotifyWatcher struct {
	*fsnotify.Watcher
}

func (w fsnotifyWatcher) Events() <-chan fsnotify.Event { return w.Watcher.Events }
func (w fsnotifyWatcher) Errors() <-chan error          { return w.Watcher.Errors }

func newFSNotifyWatcher() (eventWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return fsnotifyWatcher{w}, nil
}

// Watcher reports source files that are written or created under a set of
// paths.
type Watcher struct {
	searcher *Searcher
	logger   *slog.Logger
	Ready    chan struct{}

	debounce   time.Duration
	newWatcher func() (eventWatcher, error)
	group      singleflight.Group
}

// NewWatcher creates a watcher over the same paths, with the same filters,
// that s searches.
func NewWatcher(s *Searcher, logger *slog.Logger) *Watcher {
	return &Watcher{
		searcher:   s,
		logger:     logger.With("component", "watcher"),
		Ready:      make(chan struct{}),
		debounce:   DebounceDuration,
		newWatcher: newFSNotifyWatcher,
	}
}

// Watch calls callback with the path of every relevant file that changes,
// once per burst of events. It blocks until ctx is cancelled.
//
// Calls for the same path never overlap. Rewriting a file from the callback
// produces one more event for it, which is harmless as long as the callback
// is idempotent.
func (w *Watcher) Watch(ctx context.Context, callback func(path string)) error {
	watcher, err := w.newWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	files := make(map[string]struct{})
	for _, root := range w.searcher.roots {
		info, sErr := os.Stat(root)
		if sErr != nil {
			return sErr
		}
		if !info.IsDir() {
			files[filepath.Clean(root)] = struct{}{}
			if aErr := watcher.Add(filepath.Dir(root)); aErr != nil {
				return aErr
			}
			continue
		}
		if aErr := w.addRecursive(watcher, root); aErr != nil {
			return aErr
		}
	}

	w.logger.Info("Watching for changes", "paths", w.searcher.roots)
	if w.Ready != nil {
		close(w.Ready)
	}

	var mu sync.Mutex
	pending := make(map[string]struct{})
	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		clear(pending)
		mu.Unlock()

		slices.Sort(paths)
		for _, p := range paths {
			if ctx.Err() != nil {
				return
			}
			_, _, _ = w.group.Do(p, func() (any, error) {
				callback(p)
				return nil, nil
			})
		}
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors():
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			path, relevant := w.handleEvent(watcher, event, files)
			if !relevant {
				continue
			}
			mu.Lock()
			pending[path] = struct{}{}
			mu.Unlock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, flush)
		}
	}
}

// handleEvent adds newly created directories to the watcher and returns the
// path of a changed source file.
func (w *Watcher) handleEvent(watcher eventWatcher, event fsnotify.Event, files map[string]struct{}) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return "", false
	}

	path := filepath.Clean(event.Name)
	if _, ok := files[path]; ok {
		return event.Name, true
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if w.isWatchedDir(event.Name) {
				if err := w.addRecursive(watcher, event.Name); err != nil {
					w.logger.Error("Failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return "", false
		}
	}

	if !w.searcher.Wanted(path) || !w.isWatchedDir(filepath.Dir(path)) {
		return "", false
	}
	for _, root := range w.searcher.roots {
		if filepath.Clean(root) == "." {
			return displayPath(root, path), true
		}
	}
	return event.Name, true
}

// isWatchedDir reports whether dir lies under a directory root and outside
// every excluded directory.
func (w *Watcher) isWatchedDir(dir string) bool {
	for _, root := range w.searcher.roots {
		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if !w.searcher.excludedBelow(root, dir) {
			return true
		}
	}
	return false
}

// addRecursive adds root and every directory below it that is not excluded.
func (w *Watcher) addRecursive(watcher eventWatcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.searcher.Excluded(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
