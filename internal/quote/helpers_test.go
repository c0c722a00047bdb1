package quote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/andyballingall/rustfmt-quote/internal/rustfmt"
)

// MockFormatter is a testify mock of rustfmt.Formatter.
type MockFormatter struct {
	mock.Mock
}

func (m *MockFormatter) Format(ctx context.Context, src string) (string, error) {
	args := m.Called(ctx, src)
	return args.String(0), args.Error(1)
}

var rawInterpolation = regexp.MustCompile(`#[_a-zA-Z]`)

// collapseFormatter behaves like a strict rustfmt for the purposes of these
// tests: it rejects raw #ident interpolations and squeezes every run of
// whitespace after the indentation down to a single space.
var collapseFormatter = rustfmt.FormatterFunc(func(_ context.Context, src string) (string, error) {
	if rawInterpolation.MatchString(src) {
		return "", &rustfmt.FormatError{Command: "rustfmt", ExitCode: 1, Stderr: "error: expected one of `(`, `[`, or `{`"}
	}
	var sb strings.Builder
	for _, line := range SplitLines(src) {
		body := strings.TrimRight(line, "\n")
		trimmed := strings.TrimLeft(body, " ")
		indent := body[:len(body)-len(trimmed)]
		sb.WriteString(indent + strings.Join(strings.Fields(trimmed), " ") + "\n")
	}
	return sb.String(), nil
})

// identityFormatter returns its input, like rustfmt on well formatted code.
var identityFormatter = rustfmt.FormatterFunc(func(_ context.Context, src string) (string, error) {
	return src, nil
})

var failingFormatter = rustfmt.FormatterFunc(func(_ context.Context, _ string) (string, error) {
	return "", &rustfmt.FormatError{Command: "rustfmt", ExitCode: 1, Stderr: "error: this file contains an unclosed delimiter"}
})

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRewriter(f rustfmt.Formatter) *Rewriter {
	filter, err := NewFilter(DefaultReservedMarkers)
	if err != nil {
		panic(fmt.Sprintf("default filter: %v", err))
	}
	return NewRewriter(f, filter, discardLogger())
}
