package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/rustfmt-quote/internal/quote"
	"github.com/andyballingall/rustfmt-quote/internal/runner"
	"github.com/andyballingall/rustfmt-quote/internal/rustfmt"
)

type MockManager struct {
	mock.Mock
}

func (m *MockManager) FormatPaths(ctx context.Context, paths []string, opts RunOptions) error {
	args := m.Called(ctx, paths, opts)
	return args.Error(0)
}

func (m *MockManager) WatchPaths(ctx context.Context, paths []string, opts RunOptions,
	readyChan chan<- struct{},
) error {
	args := m.Called(ctx, paths, opts, readyChan)
	return args.Error(0)
}

const messySource = `fn gen(value: Ident) -> TokenStream {
    quote! {
        let   x =   #value;
    }
}
`

const tidySource = `fn gen(value: Ident) -> TokenStream {
    quote! {
        let x = #value;
    }
}
`

// squeezeFormatter collapses runs of spaces after the indentation, which is
// enough of rustfmt to tell formatted blocks from unformatted ones.
var squeezeFormatter = rustfmt.FormatterFunc(func(_ context.Context, src string) (string, error) {
	var sb strings.Builder
	for _, line := range quote.SplitLines(src) {
		body := strings.TrimSuffix(line, "\n")
		trimmed := strings.TrimLeft(body, " ")
		sb.WriteString(body[:len(body)-len(trimmed)] + strings.Join(strings.Fields(trimmed), " ") + "\n")
	}
	return sb.String(), nil
})

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRunner(t *testing.T, f rustfmt.Formatter) *runner.Runner {
	t.Helper()
	filter, err := quote.NewFilter(quote.DefaultReservedMarkers)
	require.NoError(t, err)
	return runner.NewRunner(quote.NewRewriter(f, filter, discardLogger()), discardLogger())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// fakeRustfmt writes a shell script which squeezes repeated spaces the way
// squeezeFormatter does.
func fakeRustfmt(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script formatter needs a POSIX shell")
	}
	return writeExecutable(t, "#!/bin/sh\nsed -e 's/\\([^ ]\\)  */\\1 /g'\n")
}

func writeExecutable(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rustfmt")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// syncBuffer is a bytes.Buffer which may be written from several goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
