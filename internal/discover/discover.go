// Package discover recovers the qmake invocation behind an existing
// Makefile and resolves which project file a probe should run against.
//
// qmake-generated Makefiles carry a `qmake` pseudo-target whose recipe is
// the exact command that produced the Makefile. Running make in dry-run
// mode against that target prints the command without executing it; the
// last line mentioning qmake is the one we want.
package discover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"qmprobe/internal/invoke"
	"qmprobe/internal/logging"
	"qmprobe/internal/wire"
)

// RegenerateTarget is the conventional pseudo-target in qmake-generated
// Makefiles that re-runs the original qmake command.
const RegenerateTarget = "qmake"

// strippedEnvVars are removed from the environment before the dry run so a
// recursive make invocation in the caller cannot leak flags into ours.
var strippedEnvVars = []string{"MAKEFLAGS", "MAKELEVEL", "MFLAGS"}

// CommandFromMakefile asks the build driver what qmake command would
// regenerate the given Makefile and isolates that command line from the
// surrounding dry-run noise. It scans the output from the end backward,
// skipping blank lines, and returns the first line containing "qmake"
// case-insensitively.
func CommandFromMakefile(ctx context.Context, runner invoke.Runner, makeBin, makefile string) (string, error) {
	dir := filepath.Dir(makefile)
	cmd := invoke.Command{
		Binary:    makeBin,
		Arguments: []string{"-f", filepath.Base(makefile), "-n", RegenerateTarget},
		Dir:       dir,
		Env:       strippedEnviron(),
	}

	logging.Discover("discovering qmake command: %s (dir=%s)", cmd.CommandString(), dir)
	result, err := runner.Execute(ctx, cmd)
	if err != nil {
		return "", fmt.Errorf("running %q in %q: %w", cmd.CommandString(), dir, err)
	}
	if result.ExitCode != 0 && !strings.Contains(result.Combined, wire.MagicExitToken) {
		return "", fmt.Errorf("%q in %q exited with status %d:\n%s",
			cmd.CommandString(), dir, result.ExitCode, result.Combined)
	}

	line, ok := lastLineContaining(result.Combined, "qmake")
	if !ok {
		return "", fmt.Errorf("no qmake command found in dry-run output of %q in %q:\n%s",
			cmd.CommandString(), dir, result.Combined)
	}
	logging.DiscoverDebug("discovered: %s", line)
	return line, nil
}

// lastLineContaining scans lines from the end backward, skipping blank
// lines, for the first one containing needle case-insensitively.
func lastLineContaining(output, needle string) (string, bool) {
	needle = strings.ToLower(needle)
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.Contains(strings.ToLower(line), needle) {
			return line, true
		}
	}
	return "", false
}

// strippedEnviron returns the current environment minus the make control
// variables that would otherwise treat our dry run as a recursive call.
func strippedEnviron() []string {
	env := os.Environ()
	kept := env[:0]
	for _, kv := range env {
		name, _, _ := strings.Cut(kv, "=")
		if isStrippedVar(name) {
			continue
		}
		kept = append(kept, kv)
	}
	return kept
}

func isStrippedVar(name string) bool {
	for _, v := range strippedEnvVars {
		if name == v {
			return true
		}
	}
	return false
}
