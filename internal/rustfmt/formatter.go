// Package rustfmt runs an external Rust formatter over source text.
package rustfmt

import (
	"context"
)

// DefaultCommand is the formatter executable used when none is configured.
const DefaultCommand = "rustfmt"

// Formatter formats a complete Rust source file.
type Formatter interface {
	// Format returns src as rewritten by the formatter. It fails with a
	// *FormatError if the formatter rejects the input.
	Format(ctx context.Context, src string) (string, error)
}

// FormatterFunc adapts an ordinary function to the Formatter interface.
type FormatterFunc func(ctx context.Context, src string) (string, error)

func (f FormatterFunc) Format(ctx context.Context, src string) (string, error) {
	return f(ctx, src)
}
