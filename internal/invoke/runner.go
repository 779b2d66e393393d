// Package invoke is the lowest-level execution layer of qmprobe: it runs
// make and qmake as subprocesses and captures their combined output for the
// decoder. It knows nothing about the marker protocol; exit-status policy
// (sentinel-tolerant success, fail-fast vs warn) lives in internal/probe.
package invoke

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"time"

	"qmprobe/internal/logging"
)

// DefaultMaxOutputBytes caps captured stdout+stderr per stream. qmake output
// for a probe run is tiny; the cap guards against a project that message()s
// in a loop.
const DefaultMaxOutputBytes = 10 * 1024 * 1024

// Command specifies one subprocess invocation.
type Command struct {
	// Binary is the executable to run.
	Binary string

	// Arguments are the command-line arguments.
	Arguments []string

	// Dir is the working directory. Empty means the process default.
	Dir string

	// Env is the full environment for the child, in KEY=VALUE form.
	// Nil inherits the parent environment.
	Env []string
}

// CommandString returns the command as a display string for logs and errors.
func (c Command) CommandString() string {
	s := c.Binary
	for _, arg := range c.Arguments {
		s += " " + arg
	}
	return s
}

// Result holds everything observed from one subprocess run.
type Result struct {
	// ExitCode is the process exit status; -1 if it never ran.
	ExitCode int

	// Stdout, Stderr and Combined hold the captured output. Combined is
	// stdout followed by stderr, which is what the decoder scans.
	Stdout   string
	Stderr   string
	Combined string

	// Truncated is set when either stream hit the output cap.
	Truncated bool

	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
}

// Runner executes commands. The single production implementation is
// HostRunner; tests substitute fakes.
type Runner interface {
	Execute(ctx context.Context, cmd Command) (*Result, error)
}

// HostRunner executes commands directly on the host via os/exec.
type HostRunner struct {
	// MaxOutputBytes overrides DefaultMaxOutputBytes when positive.
	MaxOutputBytes int64
}

// Execute runs the command and blocks until it exits. A nonzero exit status
// is not an error: the Result carries the code and the caller decides. An
// error is returned only when the process could not be run at all (missing
// binary, bad working directory, canceled context).
func (r *HostRunner) Execute(ctx context.Context, cmd Command) (*Result, error) {
	logging.InvokeDebug("executing: %s (dir=%s)", cmd.CommandString(), cmd.Dir)

	maxOutput := r.MaxOutputBytes
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutputBytes
	}

	execCmd := exec.CommandContext(ctx, cmd.Binary, cmd.Arguments...)
	execCmd.Dir = cmd.Dir
	execCmd.Env = cmd.Env

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: maxOutput}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: maxOutput}
	execCmd.Stdout = stdoutLimited
	execCmd.Stderr = stderrLimited

	result := &Result{ExitCode: -1}
	result.StartedAt = time.Now()
	err := execCmd.Run()
	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()
	result.Combined = result.Stdout
	if result.Stderr != "" {
		if result.Combined != "" && !endsWithNewline(result.Combined) {
			result.Combined += "\n"
		}
		result.Combined += result.Stderr
	}
	result.Truncated = stdoutLimited.truncated || stderrLimited.truncated
	if result.Truncated {
		logging.InvokeWarn("output truncated for %s", cmd.Binary)
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			logging.InvokeDebug("command exited non-zero: %s -> %d", cmd.Binary, result.ExitCode)
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		return result, err
	}

	result.ExitCode = 0
	logging.InvokeDebug("command succeeded: %s (%s, %d bytes out)",
		cmd.Binary, result.Duration, len(result.Combined))
	return result, nil
}

func endsWithNewline(s string) bool {
	return len(s) > 0 && s[len(s)-1] == '\n'
}

// limitedWriter is an io.Writer that drops bytes past a cap while reporting
// full writes, so the child never sees a short-write error.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.written >= lw.max {
		lw.truncated = true
		return n, nil
	}
	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		return n, err
	}
	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
