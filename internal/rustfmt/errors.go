package rustfmt

import (
	"fmt"
	"time"
)

// FormatError reports a formatter that ran but exited with a nonzero status,
// usually because the input did not parse.
type FormatError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *FormatError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// StartError reports a formatter that could not be run at all.
type StartError struct {
	Command string
	Wrapped error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to run %s: %v", e.Command, e.Wrapped)
}

func (e *StartError) Unwrap() error {
	return e.Wrapped
}

type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not finish within %s", e.Command, e.Timeout)
}
