// Package decode extracts marker lines from qmake output and accumulates
// them into a result set. Only lines between the BEGIN and END sentinels
// are considered, so compiler banners, Project MESSAGE prefixes and
// unrelated warnings cannot be mistaken for results.
package decode

import (
	"strings"

	"qmprobe/internal/logging"
	"qmprobe/internal/wire"
)

// Result maps resolved names to values. Variables accumulate elements in
// emission order; tests hold a "0"/"1" flag. A name absent from both maps
// was not resolved.
type Result struct {
	Variables map[string][]string
	Tests     map[string]string
}

// NewResult returns an empty result set.
func NewResult() *Result {
	return &Result{
		Variables: make(map[string][]string),
		Tests:     make(map[string]string),
	}
}

// Decode scans combined qmake output for the marker window and returns the
// decoded values. Output with no window decodes to an empty result; a
// missing or garbled marker is never an error, the name just stays absent.
func Decode(output string) *Result {
	res := NewResult()

	inWindow := false
	for _, line := range strings.Split(output, "\n") {
		if !inWindow {
			if strings.Contains(line, wire.BeginSentinel) {
				inWindow = true
			}
			continue
		}
		if strings.Contains(line, wire.EndSentinel) {
			break
		}

		if idx := strings.Index(line, wire.VariableMarker); idx >= 0 {
			rest := line[idx+len(wire.VariableMarker):]
			// Variable names cannot contain a colon; split at the first.
			name, value, ok := strings.Cut(rest, ":")
			if !ok {
				logging.DecodeDebug("garbled variable marker: %q", line)
				continue
			}
			res.Variables[name] = append(res.Variables[name], value)
			continue
		}
		if idx := strings.Index(line, wire.TestMarker); idx >= 0 {
			rest := line[idx+len(wire.TestMarker):]
			// Test expressions may themselves contain colons; the flag is
			// always the last segment.
			cut := strings.LastIndex(rest, ":")
			if cut < 0 {
				logging.DecodeDebug("garbled test marker: %q", line)
				continue
			}
			res.Tests[rest[:cut]] = rest[cut+1:]
		}
	}

	logging.Decode("decoded %d variables, %d tests", len(res.Variables), len(res.Tests))
	return res
}

// Merge folds other into r. New names add; names present in both are
// overwritten by other; names only in r are left untouched. This is the
// monotonic merge that lets a later run widen the request set without
// losing earlier results.
func (r *Result) Merge(other *Result) {
	for name, elems := range other.Variables {
		r.Variables[name] = elems
	}
	for name, flag := range other.Tests {
		r.Tests[name] = flag
	}
}
