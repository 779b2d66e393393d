package cmdline

import (
	"fmt"
	"strings"

	"qmprobe/internal/logging"
)

// ParsedCommand is the result of classifying a discovered qmake invocation.
type ParsedCommand struct {
	// Binary is the qmake executable, always the first token.
	Binary string

	// OutputFile is the value of the -o flag, empty if none was given.
	OutputFile string

	// ProjectFiles are the tokens classified as project files. qmake
	// accepts several; qmprobe requires exactly one before rewriting.
	ProjectFiles []string

	// Passthrough holds every other argument in original order. These are
	// repeated verbatim when qmprobe re-invokes qmake, so the probe run
	// sees the same spec, cache and assignments the original run did.
	Passthrough []string
}

// Flags qmake accepts without a value. Mirrors qmake's own option table;
// anything unknown falls through to the content-based classification below.
var booleanFlags = map[string]bool{
	"-nocache":     true,
	"-nodepend":    true,
	"-nomoc":       true,
	"-nopwd":       true,
	"-norecursive": true,
	"-recursive":   true,
	"-d":           true,
	"-E":           true,
	"-Wall":        true,
	"-Wnone":       true,
	"-Wparser":     true,
	"-Wlogic":      true,
	"-Wdeprecated": true,
	"-macx":        true,
	"-unix":        true,
	"-win32":       true,
	"-makefile":    true,
	"-project":     true,
}

// Flags that consume exactly one following value token.
var valueFlags = map[string]bool{
	"-t":      true,
	"-tp":     true,
	"-spec":   true,
	"-cache":  true,
	"-qtconf": true,
}

// outputFlag captures the following token as the output file instead of
// passing it through.
const outputFlag = "-o"

// ParseCommand classifies the tokens of a discovered qmake invocation.
// The first token is the binary. Remaining tokens are matched against the
// flag tables; anything unmatched is classified by content: contains '=' is
// a variable assignment (passthrough), leading '-' is an unknown flag
// (passthrough with a warning, so flags added to qmake after this table was
// written still work), anything else is a project-file candidate.
func ParseCommand(tokens []string) (*ParsedCommand, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty qmake command")
	}

	parsed := &ParsedCommand{Binary: tokens[0]}
	args := tokens[1:]

	for i := 0; i < len(args); i++ {
		tok := args[i]
		switch {
		case tok == outputFlag:
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag %s is missing its value in %q", outputFlag, strings.Join(tokens, " "))
			}
			i++
			parsed.OutputFile = args[i]
		case booleanFlags[tok]:
			parsed.Passthrough = append(parsed.Passthrough, tok)
		case valueFlags[tok]:
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag %s is missing its value in %q", tok, strings.Join(tokens, " "))
			}
			parsed.Passthrough = append(parsed.Passthrough, tok, args[i+1])
			i++
		case strings.Contains(tok, "="):
			parsed.Passthrough = append(parsed.Passthrough, tok)
		case strings.HasPrefix(tok, "-"):
			logging.CmdlineWarn("unknown qmake flag %q, passing through", tok)
			parsed.Passthrough = append(parsed.Passthrough, tok)
		default:
			parsed.ProjectFiles = append(parsed.ProjectFiles, tok)
		}
	}

	return parsed, nil
}
