package runner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andyballingall/rustfmt-quote/internal/quote"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTree creates files relative to root. Directories are created as
// needed.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

// fakeRewriter records every call and answers with fn.
type fakeRewriter struct {
	mu    sync.Mutex
	calls []string
	modes []quote.Mode
	fn    func(ctx context.Context, path string) (*quote.FileResult, error)
}

func (f *fakeRewriter) RewriteFile(ctx context.Context, path string, mode quote.Mode) (*quote.FileResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.modes = append(f.modes, mode)
	f.mu.Unlock()
	if f.fn == nil {
		return &quote.FileResult{Path: path}, nil
	}
	return f.fn(ctx, path)
}

func (f *fakeRewriter) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func paths(files []*quote.FileResult) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}
