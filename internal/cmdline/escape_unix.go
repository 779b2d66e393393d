//go:build !windows

package cmdline

// prepareCommand is a no-op on platforms whose shells treat backslash as an
// escape character.
func prepareCommand(command string) string {
	return command
}
