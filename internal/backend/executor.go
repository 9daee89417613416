package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// InvocationError is one failed backend attempt: non-zero exit, start
// failure, or timeout. Output holds the combined stdout/stderr for
// diagnostics.
type InvocationError struct {
	Backend  string
	ExitCode int // -1 when the process did not exit normally.
	Output   string
	Err      error
}

func (e *InvocationError) Error() string {
	msg := fmt.Sprintf("backend %s failed", e.Backend)
	if e.ExitCode >= 0 {
		msg = fmt.Sprintf("backend %s exited with status %d", e.Backend, e.ExitCode)
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if line := lastLine(e.Output); line != "" {
		msg += ": " + line
	}
	return msg
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Runner invokes one backend on one asset. The worker depends on this
// interface so tests can substitute an in-process fake.
type Runner interface {
	Run(ctx context.Context, b Backend, assetPath string) error
}

// Executor runs the backend as a subprocess: "<exe> -i <asset>". Output is
// captured and only surfaced on failure. When Stream is set, output is also
// tee'd to it in real time (verbose mode).
type Executor struct {
	Timeout time.Duration // Per invocation; 0 means none.
	Stream  io.Writer
}

// Run executes b on assetPath. It returns nil on exit status 0 and an
// *InvocationError otherwise. Cancelling ctx kills the process.
func (e Executor) Run(ctx context.Context, b Backend, assetPath string) error {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, b.Path, "-i", assetPath)

	var buf bytes.Buffer
	var out io.Writer = &buf
	if e.Stream != nil {
		out = io.MultiWriter(&buf, e.Stream)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	if err == nil {
		return nil
	}

	ie := &InvocationError{Backend: b.Tag, ExitCode: -1, Output: buf.String(), Err: err}
	var exitErr *exec.ExitError
	if ctxErr := ctx.Err(); ctxErr != nil {
		ie.Err = ctxErr
	} else if errors.As(err, &exitErr) {
		ie.ExitCode = exitErr.ExitCode()
	}
	return ie
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
