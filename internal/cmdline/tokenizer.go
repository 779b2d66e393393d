// Package cmdline splits, quotes and classifies qmake command lines.
//
// Discovery (internal/discover) hands us the raw command line that make
// would use to regenerate a Makefile; this package tokenizes it with
// shell-word semantics and replays qmake's own option classification so we
// can recover the output file, the project file and the arguments that must
// be passed through verbatim on re-invocation.
package cmdline

import (
	"fmt"
	"strings"
)

// SplitCommand splits a full command invocation into argv-style tokens.
// Splitting follows shell-word rules: tokens separate on unquoted
// whitespace, single- and double-quoted substrings stay inside one token,
// and a backslash escapes the following character outside single quotes.
// There is no variable expansion. On Windows the command is pre-processed
// first so backslashes in paths survive as literal characters (see
// escape_windows.go).
func SplitCommand(command string) ([]string, error) {
	command = prepareCommand(command)

	var (
		tokens  []string
		current strings.Builder
		inToken bool
	)

	const (
		stateBare = iota
		stateSingle
		stateDouble
	)
	state := stateBare

	runes := []rune(command)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch state {
		case stateBare:
			switch {
			case c == ' ' || c == '\t' || c == '\n' || c == '\r':
				if inToken {
					tokens = append(tokens, current.String())
					current.Reset()
					inToken = false
				}
			case c == '\'':
				state = stateSingle
				inToken = true
			case c == '"':
				state = stateDouble
				inToken = true
			case c == '\\':
				if i+1 >= len(runes) {
					return nil, fmt.Errorf("trailing backslash in command %q", command)
				}
				i++
				current.WriteRune(runes[i])
				inToken = true
			default:
				current.WriteRune(c)
				inToken = true
			}
		case stateSingle:
			if c == '\'' {
				state = stateBare
			} else {
				current.WriteRune(c)
			}
		case stateDouble:
			switch c {
			case '"':
				state = stateBare
			case '\\':
				// Inside double quotes a backslash only escapes the
				// characters the shell would: quote, backslash, dollar.
				if i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\' || runes[i+1] == '$') {
					i++
					current.WriteRune(runes[i])
				} else {
					current.WriteRune(c)
				}
			default:
				current.WriteRune(c)
			}
		}
	}

	if state != stateBare {
		return nil, fmt.Errorf("unterminated quote in command %q", command)
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

// Quote wraps a single token in double quotes, escaping embedded quote and
// backslash characters, so it survives one round through the platform shell.
func Quote(token string) string {
	var b strings.Builder
	b.Grow(len(token) + 2)
	b.WriteByte('"')
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

// JoinCommand quotes every token and joins them into one invocation string
// suitable for the platform shell.
func JoinCommand(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = Quote(t)
	}
	return strings.Join(quoted, " ")
}
