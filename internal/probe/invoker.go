package probe

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"qmprobe/internal/cmdline"
	"qmprobe/internal/decode"
	"qmprobe/internal/discover"
	"qmprobe/internal/invoke"
	"qmprobe/internal/logging"
	"qmprobe/internal/rewrite"
	"qmprobe/internal/wire"
)

// runOracle drives one qmake run for the current pending set: synthesize
// the rewritten project, invoke qmake against it, decode the markers.
// Every temporary artifact is removed on every exit path.
func (p *Project) runOracle(ctx context.Context, res *discover.Resolution) (*decode.Result, error) {
	qmakeBin, err := p.qmakeBinary(res.QmakeBinary)
	if err != nil {
		return nil, err
	}

	artifacts, err := rewrite.Synthesize(res.ProjectFile, p.pending)
	if err != nil {
		return nil, newError(KindResolution, "cannot synthesize probe project", err)
	}
	defer artifacts.Cleanup()

	// The temporary Makefile sits next to the real one; write access there
	// is required anyway for qmake to have produced it in the first place.
	tempMakefile := filepath.Join(filepath.Dir(res.Makefile),
		filepath.Base(res.Makefile)+"."+artifacts.Ident)
	defer cleanupMakefileFamily(tempMakefile)

	// The rewritten copy has a different base name, which would change the
	// computed default target; pin TARGET to the original.
	originalBase := strings.TrimSuffix(filepath.Base(res.ProjectFile), filepath.Ext(res.ProjectFile))

	tokens := []string{qmakeBin, "-o", tempMakefile, "TARGET=" + originalBase, artifacts.ProjectFile}
	tokens = append(tokens, res.Passthrough...)
	line := cmdline.JoinCommand(tokens)

	workDir := filepath.Dir(res.ProjectFile)
	cmd := invoke.ShellCommand(line, workDir)

	logging.Probe("invoking oracle: %s", line)
	result, err := p.runner.Execute(ctx, cmd)
	if err != nil {
		return nil, &Error{
			Kind:    KindInvocation,
			Message: "qmake could not be run",
			Cmd:     line,
			Dir:     workDir,
			Err:     err,
		}
	}

	// The injected feature aborts qmake with error() after the markers, so
	// a nonzero exit carrying the magic token is the expected outcome.
	if result.ExitCode != 0 && !strings.Contains(result.Combined, wire.MagicExitToken) {
		return nil, &Error{
			Kind:     KindInvocation,
			Message:  "qmake failed",
			Cmd:      line,
			Dir:      workDir,
			ExitCode: result.ExitCode,
			Output:   result.Combined,
		}
	}

	return decode.Decode(result.Combined), nil
}

// cleanupMakefileFamily removes the temporary Makefile and the sibling
// files qmake silently creates beside it (Makefile.Debug, Makefile.Release
// and friends on some specs).
func cleanupMakefileFamily(tempMakefile string) {
	matches, err := filepath.Glob(tempMakefile + "*")
	if err != nil {
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			logging.ProbeDebug("cleanup: %v", err)
		}
	}
}
