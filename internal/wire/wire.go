// Package wire defines the marker protocol spoken between qmprobe and the
// qmake process it drives. The injected feature file emits these markers via
// message(); the decoder on our side matches them back out of the combined
// qmake output. All identifiers are namespaced under "qmprobe" so they cannot
// collide with output a real project produces.
package wire

import "strings"

const (
	// Namespace prefixes every marker and sentinel line.
	Namespace = "qmprobe"

	// BeginSentinel and EndSentinel delimit the marker window in qmake
	// output. Lines outside the window are ignored.
	BeginSentinel = Namespace + "::BEGIN"
	EndSentinel   = Namespace + "::END"

	// VariableMarker and TestMarker prefix individual result lines:
	//   qmprobe::variable:<name>:<element>
	//   qmprobe::test:<expr>:<0|1>
	VariableMarker = Namespace + "::variable:"
	TestMarker     = Namespace + "::test:"

	// MagicExitToken is embedded in the error() call that aborts qmake
	// after the markers have been emitted. A nonzero qmake exit whose
	// output contains this token is a successful probe run.
	MagicExitToken = Namespace + "-early-exit-5ca1ab1e"
)

// Kind distinguishes the two things qmake can be asked for.
type Kind string

const (
	KindVariable Kind = "variable"
	KindTest     Kind = "test"
)

// Request names one value to extract from the project.
type Request struct {
	Kind Kind
	Name string
}

// Ident derives a qmake-safe identifier from a raw string by replacing
// every non-alphanumeric character with an underscore. Used for scratch
// variable and feature names so they never collide with project variables.
func Ident(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
