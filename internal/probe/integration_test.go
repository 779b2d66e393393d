package probe_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qmprobe/internal/probe"
)

// findQmake returns a real qmake binary or skips the test.
func findQmake(t *testing.T) string {
	t.Helper()
	for _, candidate := range []string{"qmake", "qmake6", "qmake-qt5"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path
		}
	}
	t.Skip("no qmake binary on PATH")
	return ""
}

func TestIntegration_VariableAndTest(t *testing.T) {
	qmake := findQmake(t)

	dir := t.TempDir()
	pro := filepath.Join(dir, "myapp.pro")
	content := `TEMPLATE = aux
TARGET = myapp
CONFIG += debug
SOURCES += main.cpp util.cpp
`
	require.NoError(t, os.WriteFile(pro, []byte(content), 0o644))

	p := probe.NewFromPath(pro)
	p.SetQmake(qmake)
	ctx := context.Background()

	target := p.Variable("TARGET")
	sources := p.Variable("SOURCES")
	debug := p.Test("CONFIG(debug, debug|release)")

	got, err := target.AsList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"myapp"}, got)

	list, err := sources.AsList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.cpp", "util.cpp"}, list)

	held, err := debug.AsBool(ctx)
	require.NoError(t, err)
	assert.True(t, held)

	// No artifacts survive: only the project file we wrote.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.NotContains(t, names, "Makefile")
	for _, name := range names {
		assert.NotContains(t, name, "qmprobe", "leftover artifact %s", name)
	}
}

func TestIntegration_KeepGoingOnBrokenProject(t *testing.T) {
	qmake := findQmake(t)

	dir := t.TempDir()
	pro := filepath.Join(dir, "broken.pro")
	require.NoError(t, os.WriteFile(pro, []byte("error(deliberately broken)\n"), 0o644))

	p := probe.NewFromPath(pro)
	p.SetQmake(qmake)
	p.SetFailFast(false)

	got, err := p.Variable("TARGET").AsString(context.Background())
	require.NoError(t, err, "keep-going mode must warn, not fail")
	assert.Equal(t, "", got)
}

func TestIntegration_ResolveViaMakefile(t *testing.T) {
	qmake := findQmake(t)
	if _, err := exec.LookPath("make"); err != nil {
		t.Skip("no make binary on PATH")
	}

	dir := t.TempDir()
	pro := filepath.Join(dir, "viamake.pro")
	require.NoError(t, os.WriteFile(pro, []byte("TEMPLATE = aux\nTARGET = viamake\n"), 0o644))

	// Generate a real Makefile first, then resolve through it.
	gen := exec.Command(qmake, "-o", "Makefile", "viamake.pro")
	gen.Dir = dir
	out, err := gen.CombinedOutput()
	require.NoError(t, err, "qmake failed: %s", out)

	p := probe.New()
	p.SetMakeFile(filepath.Join(dir, "Makefile"))

	got, err := p.Variable("TARGET").AsString(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "viamake", got)
}
