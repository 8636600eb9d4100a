package bridge

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/agentstation/pimctl/pkg/constants"
	"github.com/agentstation/pimctl/pkg/errors"
	"github.com/agentstation/pimctl/pkg/logging"
)

// Executor runs scripts through osascript, feeding the script on stdin.
type Executor struct {
	binary    string
	args      []string
	timeout   time.Duration
	maxOutput int64
}

// Option configures an Executor.
type Option func(*Executor)

// WithBinary sets the interpreter to run.
func WithBinary(path string) Option {
	return func(e *Executor) {
		if path != "" {
			e.binary = path
		}
	}
}

// WithArgs sets the interpreter arguments. The script is always on stdin.
func WithArgs(args ...string) Option {
	return func(e *Executor) {
		e.args = append([]string(nil), args...)
	}
}

// WithTimeout bounds each run. Values outside (0, MaxBridgeTimeout] are
// ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 && d <= constants.MaxBridgeTimeout {
			e.timeout = d
		}
	}
}

// WithMaxOutputBytes caps how much of stdout and stderr is kept.
func WithMaxOutputBytes(n int64) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxOutput = n
		}
	}
}

// New creates an Executor for osascript with default limits.
func New(opts ...Option) *Executor {
	e := &Executor{
		binary:    constants.OSAScriptBinary,
		args:      []string{"-"},
		timeout:   constants.BridgeTimeout,
		maxOutput: constants.MaxBridgeOutputBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Binary returns the interpreter the executor runs.
func (e *Executor) Binary() string {
	return e.binary
}

// Run executes script and waits for it to finish.
func (e *Executor) Run(ctx context.Context, script string) (*Result, error) {
	logger := logging.FromContext(ctx)
	command := strings.Join(append([]string{e.binary}, e.args...), " ")

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, e.binary, e.args...)
	cmd.Stdin = strings.NewReader(script)
	cmd.WaitDelay = time.Second

	var stdoutBuf, stderrBuf bytes.Buffer
	stdout := &limitedWriter{w: &stdoutBuf, max: e.maxOutput}
	stderr := &limitedWriter{w: &stderrBuf, max: e.maxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger.Debug().
		Str("command", command).
		Int("script_bytes", len(script)).
		Msg("Running automation script")

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:    stdoutBuf.String(),
		Stderr:    stderrBuf.String(),
		Duration:  time.Since(start),
		Truncated: stdout.truncated || stderr.truncated,
	}
	if result.Truncated {
		logger.Warn().
			Int64("discarded_bytes", stdout.discarded+stderr.discarded).
			Msg("Automation output truncated")
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			return nil, fmt.Errorf("%w: %v", errors.ErrCanceled, ctx.Err())
		case stderrors.Is(execCtx.Err(), context.DeadlineExceeded):
			logger.Warn().Dur("timeout", e.timeout).Msg("Automation script timed out")
			return nil, errors.NewTimeoutError("run script", e.timeout.String(), command)
		case stderrors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		default:
			return nil, errors.NewProcessError("run script", command, result.Diagnostic(), -1, err)
		}
	}

	logger.Debug().
		Int("exit_code", result.ExitCode).
		Dur("duration", result.Duration).
		Int("stdout_bytes", len(result.Stdout)).
		Msg("Automation script finished")

	return result, nil
}

// limitedWriter keeps at most max bytes and silently discards the rest.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
	discarded int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		lw.discarded += int64(n)
		return n, nil
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		lw.discarded += int64(n) - remaining
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
