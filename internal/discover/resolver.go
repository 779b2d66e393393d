package discover

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"qmprobe/internal/cmdline"
	"qmprobe/internal/invoke"
	"qmprobe/internal/logging"
)

// Sentinel errors wrapped into resolution failures so callers can
// distinguish a command that would not parse from a command of the wrong
// shape without string matching.
var (
	// ErrCommandParse: the discovered command could not be tokenized or
	// classified.
	ErrCommandParse = errors.New("unparseable qmake command")

	// ErrCommandShape: the discovered command parsed but does not name
	// exactly one project file and an output file.
	ErrCommandShape = errors.New("unusable qmake command")
)

// Resolution is the outcome of project-file resolution: everything the
// rewriter and invoker need to run a probe.
type Resolution struct {
	// ProjectFile is the .pro file qmake will evaluate.
	ProjectFile string

	// Makefile is the build file the original qmake run produced or would
	// produce. The temporary probe Makefile is co-located with it.
	Makefile string

	// QmakeBinary is the binary from the discovered command. Empty when
	// resolution went via a project path and no command was discovered.
	QmakeBinary string

	// Passthrough are the discovered arguments to repeat on re-invocation.
	Passthrough []string
}

// ResolveFromMakefile discovers the qmake command that regenerates the
// given Makefile and derives the project file from it. The discovered
// command must name exactly one project file and an output file; anything
// else means we cannot reproduce the original evaluation faithfully.
func ResolveFromMakefile(ctx context.Context, runner invoke.Runner, makeBin, makefile string) (*Resolution, error) {
	command, err := CommandFromMakefile(ctx, runner, makeBin, makefile)
	if err != nil {
		return nil, err
	}

	tokens, err := cmdline.SplitCommand(command)
	if err != nil {
		return nil, fmt.Errorf("%w: tokenizing %q: %w", ErrCommandParse, command, err)
	}
	parsed, err := cmdline.ParseCommand(tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: classifying %q: %w", ErrCommandParse, command, err)
	}

	switch len(parsed.ProjectFiles) {
	case 1:
		// The single supported shape.
	case 0:
		return nil, fmt.Errorf("%w: no project file in %q", ErrCommandShape, command)
	default:
		return nil, fmt.Errorf("%w: found %d project files in %q, want exactly one",
			ErrCommandShape, len(parsed.ProjectFiles), command)
	}
	if parsed.OutputFile == "" {
		return nil, fmt.Errorf("%w: could not determine output file from %q", ErrCommandShape, command)
	}

	// make ran in the Makefile's directory, so relative paths in the
	// command are relative to it; the project file in turn resolves
	// against the output file's directory.
	outputFile := parsed.OutputFile
	if !filepath.IsAbs(outputFile) {
		outputFile = filepath.Join(filepath.Dir(makefile), outputFile)
	}
	projectFile := parsed.ProjectFiles[0]
	if !filepath.IsAbs(projectFile) {
		projectFile = filepath.Join(filepath.Dir(outputFile), projectFile)
	}

	res := &Resolution{
		ProjectFile: projectFile,
		Makefile:    outputFile,
		QmakeBinary: parsed.Binary,
		Passthrough: parsed.Passthrough,
	}
	logging.Discover("resolved via makefile: pro=%s out=%s qmake=%s", res.ProjectFile, res.Makefile, res.QmakeBinary)
	return res, nil
}

// ResolveFromProjectPath resolves a probe target from a .pro file or a
// directory containing one. For a file the Makefile is assumed alongside
// it; for a directory the project file is picked by glob, narrowed first by
// case-insensitive then by exact basename match against the directory name.
func ResolveFromProjectPath(path string) (*Resolution, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("project path %q: %w", path, err)
	}

	if !info.IsDir() {
		return &Resolution{
			ProjectFile: path,
			Makefile:    filepath.Join(filepath.Dir(path), "Makefile"),
		}, nil
	}

	projectFile, err := projectFileInDir(path)
	if err != nil {
		return nil, err
	}
	res := &Resolution{
		ProjectFile: projectFile,
		Makefile:    filepath.Join(path, "Makefile"),
	}
	logging.Discover("resolved via directory: pro=%s out=%s", res.ProjectFile, res.Makefile)
	return res, nil
}

// projectFileInDir picks the project file for a directory, mirroring
// qmake's own behavior of preferring the .pro named after the directory.
func projectFileInDir(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pro"))
	if err != nil {
		return "", fmt.Errorf("globbing %q: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no project file found in directory %q", dir)
	}
	if len(matches) == 1 {
		return matches[0], nil
	}

	base := filepath.Base(dir)
	want := base + ".pro"

	var caseless []string
	for _, m := range matches {
		if strings.EqualFold(filepath.Base(m), want) {
			caseless = append(caseless, m)
		}
	}
	if len(caseless) == 1 {
		return caseless[0], nil
	}

	var exact []string
	for _, m := range caseless {
		if filepath.Base(m) == want {
			exact = append(exact, m)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}

	return "", fmt.Errorf("cannot choose between %d project files in directory %q", len(matches), dir)
}
