//go:build !windows

package invoke

// ShellCommand wraps a full command line for execution through the platform
// shell. The line must already be quoted (see cmdline.JoinCommand).
func ShellCommand(line, dir string) Command {
	return Command{
		Binary:    "sh",
		Arguments: []string{"-c", line},
		Dir:       dir,
	}
}
