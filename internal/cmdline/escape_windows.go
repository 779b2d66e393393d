//go:build windows

package cmdline

import "strings"

// prepareCommand doubles backslashes before tokenizing. cmd.exe does not
// treat backslash as an escape character, so a discovered command line
// contains bare path separators that the tokenizer would otherwise eat.
func prepareCommand(command string) string {
	return strings.ReplaceAll(command, `\`, `\\`)
}
