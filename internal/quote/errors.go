package quote

import (
	"fmt"
)

// UnterminatedBlockError reports a quote! block still open at end of file.
type UnterminatedBlockError struct {
	Line int
}

func (e *UnterminatedBlockError) Error() string {
	return fmt.Sprintf("quote! block starting at line %d is never closed", e.Line)
}

// UnexpectedOutputError reports formatter output too short to contain the
// wrapper lines added by Disguise.
type UnexpectedOutputError struct {
	Lines int
	Depth int
}

func (e *UnexpectedOutputError) Error() string {
	return fmt.Sprintf("formatter returned %d lines, expected at least %d wrapper lines", e.Lines, 2*e.Depth)
}

type InvalidMarkerError struct {
	Marker string
}

func (e *InvalidMarkerError) Error() string {
	return fmt.Sprintf("reserved marker '%s' is not an identifier", e.Marker)
}

type ReadFileError struct {
	Path    string
	Wrapped error
}

func (e *ReadFileError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Wrapped)
}

func (e *ReadFileError) Unwrap() error {
	return e.Wrapped
}

type WriteFileError struct {
	Path    string
	Wrapped error
}

func (e *WriteFileError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Wrapped)
}

func (e *WriteFileError) Unwrap() error {
	return e.Wrapped
}
