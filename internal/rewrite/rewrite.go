// Package rewrite synthesizes the two artifacts a probe run feeds to qmake:
// a byte-for-byte copy of the project file with a feature-injection block
// appended, and the injected feature (.prf) file that emits the marker
// lines and aborts qmake before it writes a real Makefile.
//
// The copy lives next to the original because a family of qmake built-ins
// ($$PWD, $$_PRO_FILE_PWD_, relative includes) resolve against the project
// file's directory. The feature file lives in its own scratch directory
// added via QMAKEFEATURES. CONFIG features are applied last-to-first, so
// prepending the feature name to CONFIG makes it run after every ordinary
// feature of the project has taken effect.
package rewrite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"qmprobe/internal/logging"
	"qmprobe/internal/wire"
)

// Artifacts describes the synthesized files of one probe run.
type Artifacts struct {
	// ProjectFile is the temporary project copy, co-located with the
	// original.
	ProjectFile string

	// FeatureDir is the scratch directory holding the injected feature.
	FeatureDir string

	// Ident is the unique run identifier all scratch names derive from.
	Ident string
}

// Cleanup removes every artifact. Safe to call more than once and on a
// partially constructed set.
func (a *Artifacts) Cleanup() {
	if a.ProjectFile != "" {
		if err := os.Remove(a.ProjectFile); err != nil && !os.IsNotExist(err) {
			logging.RewriteDebug("cleanup: %v", err)
		}
	}
	if a.FeatureDir != "" {
		if err := os.RemoveAll(a.FeatureDir); err != nil {
			logging.RewriteDebug("cleanup: %v", err)
		}
	}
}

// Synthesize produces the temporary project copy and feature file for the
// given request set. The caller owns cleanup via Artifacts.Cleanup.
func Synthesize(projectFile string, requests []wire.Request) (*Artifacts, error) {
	original, err := os.ReadFile(projectFile)
	if err != nil {
		return nil, fmt.Errorf("reading project file %q: %w", projectFile, err)
	}

	ident := wire.Ident(wire.Namespace + "_" + uuid.New().String()[:8])
	artifacts := &Artifacts{Ident: ident}

	featureDir, err := os.MkdirTemp("", wire.Namespace+"-features-")
	if err != nil {
		return nil, fmt.Errorf("creating feature directory: %w", err)
	}
	artifacts.FeatureDir = featureDir

	featureFile := filepath.Join(featureDir, ident+".prf")
	feature := featureContent(filepath.Dir(projectFile), ident, requests)
	if err := os.WriteFile(featureFile, []byte(feature), 0o644); err != nil {
		artifacts.Cleanup()
		return nil, fmt.Errorf("writing feature file %q: %w", featureFile, err)
	}

	dir := filepath.Dir(projectFile)
	base := strings.TrimSuffix(filepath.Base(projectFile), filepath.Ext(projectFile))
	tempPro := filepath.Join(dir, base+"."+ident+".pro")

	var pro strings.Builder
	pro.Write(original)
	if len(original) > 0 && original[len(original)-1] != '\n' {
		pro.WriteByte('\n')
	}
	pro.WriteString("\n")
	fmt.Fprintf(&pro, "QMAKEFEATURES *= $$quote(%s)\n", qmakePath(featureDir))
	fmt.Fprintf(&pro, "CONFIG = %s $$CONFIG\n", ident)

	if err := os.WriteFile(tempPro, []byte(pro.String()), 0o644); err != nil {
		artifacts.Cleanup()
		return nil, fmt.Errorf("writing project copy %q: %w", tempPro, err)
	}
	artifacts.ProjectFile = tempPro

	logging.Rewrite("synthesized %s (+feature %s) for %d requests", tempPro, featureFile, len(requests))
	return artifacts, nil
}

// featureContent renders the injected .prf. Layout, in order: restore the
// project directory built-in (evaluation happens against a copy with a
// different name, which must stay invisible to the project), BEGIN
// sentinel, one emission block per request, END sentinel, early abort.
func featureContent(originalDir, ident string, requests []wire.Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "PWD = $$quote(%s)\n", qmakePath(originalDir))
	fmt.Fprintf(&b, "message(\"%s\")\n", wire.BeginSentinel)

	for i, req := range requests {
		switch req.Kind {
		case wire.KindTest:
			fmt.Fprintf(&b, "%s {\n", req.Name)
			fmt.Fprintf(&b, "    message(\"%s%s:1\")\n", wire.TestMarker, req.Name)
			fmt.Fprintf(&b, "} else {\n")
			fmt.Fprintf(&b, "    message(\"%s%s:0\")\n", wire.TestMarker, req.Name)
			fmt.Fprintf(&b, "}\n")
		default:
			scratch := fmt.Sprintf("%s_loop_%d", ident, i)
			fmt.Fprintf(&b, "for(%s, %s) {\n", scratch, req.Name)
			fmt.Fprintf(&b, "    message(\"%s%s:$$%s\")\n", wire.VariableMarker, req.Name, scratch)
			fmt.Fprintf(&b, "}\n")
			// Non-list built-ins iterate to nothing; fall back to the raw
			// value. The isEmpty guard on the name keeps a genuinely
			// empty variable decoding as an empty list.
			fmt.Fprintf(&b, "isEmpty(%s):!isEmpty(%s):message(\"%s%s:$$%s\")\n",
				scratch, req.Name, wire.VariableMarker, req.Name, req.Name)
		}
	}

	fmt.Fprintf(&b, "message(\"%s\")\n", wire.EndSentinel)
	fmt.Fprintf(&b, "error(\"%s\")\n", wire.MagicExitToken)
	return b.String()
}

// qmakePath renders a filesystem path for embedding in qmake source.
// qmake accepts forward slashes on every platform, which sidesteps
// backslash escaping entirely.
func qmakePath(p string) string {
	return filepath.ToSlash(p)
}
