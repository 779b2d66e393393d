package rewrite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qmprobe/internal/wire"
)

func synthesize(t *testing.T, content string, requests []wire.Request) (*Artifacts, string, string) {
	t.Helper()
	dir := t.TempDir()
	pro := filepath.Join(dir, "myapp.pro")
	require.NoError(t, os.WriteFile(pro, []byte(content), 0o644))

	artifacts, err := Synthesize(pro, requests)
	require.NoError(t, err)
	t.Cleanup(artifacts.Cleanup)

	proCopy, err := os.ReadFile(artifacts.ProjectFile)
	require.NoError(t, err)

	entries, err := os.ReadDir(artifacts.FeatureDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	feature, err := os.ReadFile(filepath.Join(artifacts.FeatureDir, entries[0].Name()))
	require.NoError(t, err)

	return artifacts, string(proCopy), string(feature)
}

func TestSynthesize_ProjectCopy(t *testing.T) {
	original := "TARGET = myapp\nCONFIG += debug\n"
	artifacts, proCopy, _ := synthesize(t, original, []wire.Request{
		{Kind: wire.KindVariable, Name: "TARGET"},
	})

	// Byte-for-byte copy of the original, then the injection block.
	assert.True(t, strings.HasPrefix(proCopy, original), "copy must start with the original content")
	assert.Contains(t, proCopy, "QMAKEFEATURES *= $$quote("+filepath.ToSlash(artifacts.FeatureDir)+")")
	assert.Contains(t, proCopy, "CONFIG = "+artifacts.Ident+" $$CONFIG")

	// Co-located with the original and carrying the run identifier.
	assert.Contains(t, filepath.Base(artifacts.ProjectFile), artifacts.Ident)
	assert.Contains(t, filepath.Base(artifacts.ProjectFile), "myapp.")
}

func TestSynthesize_FeatureLayout(t *testing.T) {
	_, _, feature := synthesize(t, "TARGET = myapp\n", []wire.Request{
		{Kind: wire.KindVariable, Name: "SOURCES"},
		{Kind: wire.KindTest, Name: "CONFIG(debug, debug|release)"},
	})

	// Order matters: PWD restore, BEGIN, emissions, END, abort.
	positions := []int{
		strings.Index(feature, "PWD = $$quote("),
		strings.Index(feature, wire.BeginSentinel),
		strings.Index(feature, wire.VariableMarker+"SOURCES:"),
		strings.Index(feature, wire.TestMarker+"CONFIG(debug, debug|release):1"),
		strings.Index(feature, wire.EndSentinel),
		strings.Index(feature, "error(\""+wire.MagicExitToken+"\")"),
	}
	for i, pos := range positions {
		require.GreaterOrEqual(t, pos, 0, "element %d missing from feature:\n%s", i, feature)
		if i > 0 {
			assert.Greater(t, pos, positions[i-1], "element %d out of order:\n%s", i, feature)
		}
	}

	// Variable emission iterates with a scratch variable and falls back to
	// the raw value for non-list built-ins.
	assert.Contains(t, feature, "for(")
	assert.Contains(t, feature, "isEmpty(")
	assert.Contains(t, feature, ":$$SOURCES")

	// Both branches of the test are covered.
	assert.Contains(t, feature, wire.TestMarker+"CONFIG(debug, debug|release):0")
}

func TestSynthesize_ScratchNamesAreNamespaced(t *testing.T) {
	artifacts, _, feature := synthesize(t, "TARGET = x\n", []wire.Request{
		{Kind: wire.KindVariable, Name: "TARGET"},
	})

	assert.True(t, strings.HasPrefix(artifacts.Ident, wire.Namespace+"_"))
	for _, r := range artifacts.Ident {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
		assert.True(t, ok, "ident %q contains %q", artifacts.Ident, r)
	}
	assert.Contains(t, feature, artifacts.Ident+"_loop_0")
}

func TestSynthesize_UniquePerRun(t *testing.T) {
	dir := t.TempDir()
	pro := filepath.Join(dir, "app.pro")
	require.NoError(t, os.WriteFile(pro, []byte("TARGET = x\n"), 0o644))

	a, err := Synthesize(pro, nil)
	require.NoError(t, err)
	defer a.Cleanup()
	b, err := Synthesize(pro, nil)
	require.NoError(t, err)
	defer b.Cleanup()

	assert.NotEqual(t, a.Ident, b.Ident)
	assert.NotEqual(t, a.ProjectFile, b.ProjectFile)
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	pro := filepath.Join(dir, "app.pro")
	require.NoError(t, os.WriteFile(pro, []byte("TARGET = x\n"), 0o644))

	artifacts, err := Synthesize(pro, []wire.Request{{Kind: wire.KindVariable, Name: "TARGET"}})
	require.NoError(t, err)

	artifacts.Cleanup()
	artifacts.Cleanup() // idempotent

	_, err = os.Stat(artifacts.ProjectFile)
	assert.True(t, os.IsNotExist(err), "project copy should be gone")
	_, err = os.Stat(artifacts.FeatureDir)
	assert.True(t, os.IsNotExist(err), "feature dir should be gone")

	// The original is untouched.
	content, err := os.ReadFile(pro)
	require.NoError(t, err)
	assert.Equal(t, "TARGET = x\n", string(content))
}

func TestSynthesize_MissingProject(t *testing.T) {
	_, err := Synthesize(filepath.Join(t.TempDir(), "absent.pro"), nil)
	require.Error(t, err)
}
