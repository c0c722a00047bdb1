package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEventWatcher struct {
	mu         sync.Mutex
	added      []string
	AddFunc    func(name string) error
	EventsChan chan fsnotify.Event
	ErrorsChan chan error
}

func newMockEventWatcher() *mockEventWatcher {
	return &mockEventWatcher{
		EventsChan: make(chan fsnotify.Event, 10),
		ErrorsChan: make(chan error, 1),
	}
}

func (m *mockEventWatcher) Add(name string) error {
	m.mu.Lock()
	m.added = append(m.added, name)
	m.mu.Unlock()
	if m.AddFunc != nil {
		return m.AddFunc(name)
	}
	return nil
}

func (m *mockEventWatcher) Added() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.added...)
}

func (m *mockEventWatcher) Close() error                  { return nil }
func (m *mockEventWatcher) Events() <-chan fsnotify.Event { return m.EventsChan }
func (m *mockEventWatcher) Errors() <-chan error          { return m.ErrorsChan }

// startWatch runs w in the background and returns a channel of the paths
// passed to the callback.
func startWatch(t *testing.T, w *Watcher) <-chan string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	changed := make(chan string, 10)
	go func() {
		_ = w.Watch(ctx, func(path string) { changed <- path })
	}()

	select {
	case <-w.Ready:
	case <-time.After(time.Second):
		t.Fatal("watcher did not become ready in time")
	}
	return changed
}

func expectPath(t *testing.T, changed <-chan string, want string) {
	t.Helper()
	select {
	case got := <-changed:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", want)
	}
}

func expectNothing(t *testing.T, changed <-chan string, wait time.Duration) {
	t.Helper()
	select {
	case got := <-changed:
		t.Fatalf("unexpected change reported: %s", got)
	case <-time.After(wait):
	}
}

func TestWatcher(t *testing.T) {
	t.Parallel()

	t.Run("source file write", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeTree(t, root, map[string]string{"src/lib.rs": "", "target/gen.rs": ""})
		w := NewWatcher(NewSearcher([]string{root}, []string{".rs"}, []string{"target"}), discardLogger())
		changed := startWatch(t, w)

		require.NoError(t, os.WriteFile(filepath.Join(root, "target", "gen.rs"), []byte("x"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(root, "src", "notes.md"), []byte("x"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(root, "src", "lib.rs"), []byte("x"), 0o600))

		expectPath(t, changed, filepath.Join(root, "src", "lib.rs"))
		expectNothing(t, changed, 3*DebounceDuration)
	})

	t.Run("file in new directory", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		w := NewWatcher(NewSearcher([]string{root}, []string{".rs"}, nil), discardLogger())
		changed := startWatch(t, w)

		dir := filepath.Join(root, "new")
		require.NoError(t, os.Mkdir(dir, 0o755))
		// Give the watcher time to add the new directory.
		time.Sleep(2 * DebounceDuration)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "mod.rs"), []byte("x"), 0o600))

		expectPath(t, changed, filepath.Join(dir, "mod.rs"))
	})

	t.Run("named file", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeTree(t, root, map[string]string{"build.rs.in": "", "other.rs": ""})
		named := filepath.Join(root, "build.rs.in")
		w := NewWatcher(NewSearcher([]string{named}, []string{".rs"}, nil), discardLogger())
		changed := startWatch(t, w)

		require.NoError(t, os.WriteFile(filepath.Join(root, "other.rs"), []byte("x"), 0o600))
		require.NoError(t, os.WriteFile(named, []byte("x"), 0o600))

		expectPath(t, changed, named)
		expectNothing(t, changed, 3*DebounceDuration)
	})

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		w := NewWatcher(NewSearcher([]string{filepath.Join(t.TempDir(), "gone")}, []string{".rs"}, nil), discardLogger())
		err := w.Watch(context.Background(), func(string) {})
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestWatcher_Debounce(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	mock := newMockEventWatcher()
	w := NewWatcher(NewSearcher([]string{root}, []string{".rs"}, nil), discardLogger())
	w.newWatcher = func() (eventWatcher, error) { return mock, nil }
	changed := startWatch(t, w)

	a := filepath.Join(root, "a.rs")
	b := filepath.Join(root, "b.rs")
	mock.EventsChan <- fsnotify.Event{Name: b, Op: fsnotify.Write}
	mock.EventsChan <- fsnotify.Event{Name: a, Op: fsnotify.Write}
	mock.EventsChan <- fsnotify.Event{Name: a, Op: fsnotify.Create}
	mock.EventsChan <- fsnotify.Event{Name: a, Op: fsnotify.Chmod}
	mock.ErrorsChan <- errors.New("queue overflow")

	expectPath(t, changed, a)
	expectPath(t, changed, b)
	expectNothing(t, changed, 3*DebounceDuration)
	assert.Equal(t, []string{root}, mock.Added())
}

func TestWatcher_NewWatcherFails(t *testing.T) {
	t.Parallel()
	w := NewWatcher(NewSearcher([]string{t.TempDir()}, []string{".rs"}, nil), discardLogger())
	w.newWatcher = func() (eventWatcher, error) { return nil, errors.New("too many open files") }
	err := w.Watch(context.Background(), func(string) {})
	assert.EqualError(t, err, "too many open files")
}

func TestWatcher_AddFails(t *testing.T) {
	t.Parallel()
	mock := newMockEventWatcher()
	mock.AddFunc = func(string) error { return errors.New("no space left on device") }
	w := NewWatcher(NewSearcher([]string{t.TempDir()}, []string{".rs"}, nil), discardLogger())
	w.newWatcher = func() (eventWatcher, error) { return mock, nil }
	err := w.Watch(context.Background(), func(string) {})
	assert.EqualError(t, err, "no space left on device")
}

func TestWatcher_HandleEvent_WorkingDirectory(t *testing.T) {
	t.Parallel()
	w := NewWatcher(NewSearcher(nil, []string{".rs"}, []string{"target"}), discardLogger())
	files := map[string]struct{}{}
	sep := string(filepath.Separator)

	got, ok := w.handleEvent(newMockEventWatcher(), fsnotify.Event{Name: filepath.Join("src", "lib.rs"), Op: fsnotify.Write}, files)
	require.True(t, ok)
	assert.Equal(t, "."+sep+filepath.Join("src", "lib.rs"), got)

	got, ok = w.handleEvent(newMockEventWatcher(), fsnotify.Event{Name: "." + sep + "main.rs", Op: fsnotify.Write}, files)
	require.True(t, ok)
	assert.Equal(t, "."+sep+"main.rs", got)

	_, ok = w.handleEvent(newMockEventWatcher(), fsnotify.Event{Name: filepath.Join("target", "gen.rs"), Op: fsnotify.Write}, files)
	assert.False(t, ok)
}
