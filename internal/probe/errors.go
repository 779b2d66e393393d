package probe

import (
	"fmt"
	"strings"
)

// ErrorKind classifies probe failures.
type ErrorKind string

const (
	// KindConfiguration: no makefile or project file was set.
	KindConfiguration ErrorKind = "configuration"

	// KindDiscovery: the make dry run failed or produced no qmake line.
	KindDiscovery ErrorKind = "discovery"

	// KindCommandParse: a discovered qmake command could not be classified.
	KindCommandParse ErrorKind = "command-parse"

	// KindResolution: no usable project file, or an ambiguous one.
	KindResolution ErrorKind = "resolution"

	// KindInvocation: qmake failed without the early-exit sentinel.
	KindInvocation ErrorKind = "invocation"
)

// Error is the single failure domain of this package. Callers match with
// errors.As(err, &probeErr) and only inspect Kind when they need to
// distinguish causes. Subprocess context travels with the error so a
// failure is diagnosable from its message alone.
type Error struct {
	Kind     ErrorKind
	Message  string
	Cmd      string
	Dir      string
	ExitCode int
	Output   string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "qmprobe: %s: %s", e.Kind, e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Cmd != "" {
		fmt.Fprintf(&b, "\n  command: %s", e.Cmd)
	}
	if e.Dir != "" {
		fmt.Fprintf(&b, "\n  dir: %s", e.Dir)
	}
	if e.Cmd != "" || e.ExitCode != 0 {
		fmt.Fprintf(&b, "\n  exit status: %d", e.ExitCode)
	}
	if e.Output != "" {
		fmt.Fprintf(&b, "\n  output:\n%s", indent(e.Output))
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
