package rustfmt

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single formatter invocation.
const DefaultTimeout = 30 * time.Second

// waitDelay is how long Run waits for the output pipes to drain after the
// process has been killed.
const waitDelay = 2 * time.Second

// CLIFormatter is the concrete implementation of Formatter which pipes the
// source through an executable such as rustfmt.
type CLIFormatter struct {
	command string
	args    []string
	timeout time.Duration
}

// NewCLIFormatter creates a formatter running command with args. A timeout of
// zero disables the bound on each invocation.
func NewCLIFormatter(command string, args []string, timeout time.Duration) *CLIFormatter {
	return &CLIFormatter{
		command: command,
		args:    append([]string(nil), args...),
		timeout: timeout,
	}
}

// Command returns the executable this formatter runs.
func (f *CLIFormatter) Command() string {
	return f.command
}

// Format writes src to the formatter's stdin, closes it, and collects stdout
// and stderr in full before inspecting the exit status.
func (f *CLIFormatter) Format(ctx context.Context, src string) (string, error) {
	runCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	//nolint:gosec // the command is operator configuration
	cmd := exec.CommandContext(runCtx, f.command, f.args...)
	cmd.Stdin = strings.NewReader(src)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return "", &TimeoutError{Command: f.command, Timeout: f.timeout}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", &FormatError{
			Command:  f.command,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}
	return "", &StartError{Command: f.command, Wrapped: err}
}
