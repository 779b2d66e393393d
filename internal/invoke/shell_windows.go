//go:build windows

package invoke

// ShellCommand wraps a full command line for execution through cmd.exe.
// The line must already be quoted (see cmdline.JoinCommand).
func ShellCommand(line, dir string) Command {
	return Command{
		Binary:    "cmd",
		Arguments: []string{"/C", line},
		Dir:       dir,
	}
}
