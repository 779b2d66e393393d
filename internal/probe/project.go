// Package probe is the public core of qmprobe. A Project wraps one qmake
// project (identified by its Makefile or its .pro file) and answers
// requests for variable values and boolean tests by driving qmake as an
// oracle: the project is copied, a marker-emitting feature is injected,
// qmake is run against the copy, and its output is decoded back into typed
// values. Requests are lazy; nothing runs until a value is observed, and
// all requests pending at that moment share one qmake run.
//
// A Project is not safe for concurrent use: resolution mutates the pending
// set and cache in place. Use one Project per goroutine.
package probe

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"qmprobe/internal/decode"
	"qmprobe/internal/discover"
	"qmprobe/internal/invoke"
	"qmprobe/internal/logging"
	"qmprobe/internal/wire"
)

// qmakeCandidates is the discovery order for the oracle binary when neither
// the Project nor the QMAKE environment variable names one.
var qmakeCandidates = []string{"qmake", "qmake6", "qmake-qt5"}

// Project is a handle onto one qmake project.
type Project struct {
	makefile    string
	projectFile string
	makeBin     string
	qmakeBin    string
	failFast    bool

	runner invoke.Runner

	pending    []wire.Request
	pendingSet map[wire.Request]struct{}
	cache      *decode.Result
}

// New returns an empty Project with defaults: make as the build driver,
// fail-fast enabled, no source path.
func New() *Project {
	return &Project{
		makeBin:    "make",
		failFast:   true,
		runner:     &invoke.HostRunner{},
		pendingSet: make(map[wire.Request]struct{}),
		cache:      decode.NewResult(),
	}
}

// NewFromPath constructs a Project from a path: a .pro file or a directory
// becomes the project file, anything else is taken as a Makefile.
func NewFromPath(path string) *Project {
	p := New()
	info, err := os.Stat(path)
	isDir := err == nil && info.IsDir()
	if isDir || strings.EqualFold(filepath.Ext(path), ".pro") {
		p.SetProjectFile(path)
	} else {
		p.SetMakeFile(path)
	}
	return p
}

// MakeFile returns the configured Makefile path, if any.
func (p *Project) MakeFile() string { return p.makefile }

// SetMakeFile points the Project at an existing Makefile. The project file
// will be discovered from it. Clears any configured project file and
// invalidates the resolved cache and pending set.
func (p *Project) SetMakeFile(path string) {
	p.makefile = path
	p.projectFile = ""
	p.invalidate()
}

// ProjectFile returns the configured project path, if any.
func (p *Project) ProjectFile() string { return p.projectFile }

// SetProjectFile points the Project at a .pro file or a directory
// containing one. Clears any configured Makefile and invalidates the
// resolved cache and pending set.
func (p *Project) SetProjectFile(path string) {
	p.projectFile = path
	p.makefile = ""
	p.invalidate()
}

// Make returns the build driver binary.
func (p *Project) Make() string { return p.makeBin }

// SetMake sets the build driver used for command discovery.
func (p *Project) SetMake(bin string) { p.makeBin = bin }

// Qmake returns the configured oracle binary override, if any.
func (p *Project) Qmake() string { return p.qmakeBin }

// SetQmake overrides the qmake binary. When unset, the binary comes from
// the discovered command, the QMAKE environment variable, or PATH search
// over qmakeCandidates, in that order of preference.
func (p *Project) SetQmake(bin string) { p.qmakeBin = bin }

// FailFast reports whether resolution errors propagate to the caller.
func (p *Project) FailFast() bool { return p.failFast }

// SetFailFast selects between propagating resolution errors (true, the
// default) and downgrading them to warnings with absent values (false).
func (p *Project) SetFailFast(v bool) { p.failFast = v }

// SetRunner replaces the subprocess runner. Tests use this to substitute a
// scripted oracle.
func (p *Project) SetRunner(r invoke.Runner) { p.runner = r }

func (p *Project) invalidate() {
	p.pending = nil
	p.pendingSet = make(map[wire.Request]struct{})
	p.cache = decode.NewResult()
}

// Variable requests the value of a qmake variable. The returned handle is
// lazy: qmake runs only once a value is observed, and every request made
// before that moment is answered by the same run.
func (p *Project) Variable(name string) *Value {
	p.enqueue(wire.Request{Kind: wire.KindVariable, Name: name})
	return &Value{project: p, kind: wire.KindVariable, name: name}
}

// Test requests evaluation of a qmake boolean test expression, for example
// CONFIG(debug, debug|release). Lazy, like Variable.
func (p *Project) Test(expr string) *Value {
	p.enqueue(wire.Request{Kind: wire.KindTest, Name: expr})
	return &Value{project: p, kind: wire.KindTest, name: expr}
}

func (p *Project) enqueue(req wire.Request) {
	if _, ok := p.pendingSet[req]; ok {
		return
	}
	p.pendingSet[req] = struct{}{}
	p.pending = append(p.pending, req)
}

// Resolve eagerly runs the oracle for everything currently pending. Lazy
// observation through Value handles calls this implicitly; callers that
// want the subprocess cost at a known point can invoke it directly.
// Resolving with nothing pending is a no-op.
func (p *Project) Resolve(ctx context.Context) error {
	if len(p.pending) == 0 {
		return nil
	}
	logging.Probe("resolving %d pending requests", len(p.pending))

	res, err := p.resolveSource(ctx)
	if err != nil {
		return err
	}
	result, err := p.runOracle(ctx, res)
	if err != nil {
		return err
	}

	p.cache.Merge(result)
	p.pending = nil
	p.pendingSet = make(map[wire.Request]struct{})
	return nil
}

// resolveSource determines the project file, Makefile, oracle binary and
// passthrough arguments, via the configured Makefile or project path.
func (p *Project) resolveSource(ctx context.Context) (*discover.Resolution, error) {
	switch {
	case p.makefile != "":
		res, err := discover.ResolveFromMakefile(ctx, p.runner, p.makeBin, p.makefile)
		if err != nil {
			return nil, classifyDiscoveryError(err)
		}
		return res, nil
	case p.projectFile != "":
		res, err := discover.ResolveFromProjectPath(p.projectFile)
		if err != nil {
			return nil, newError(KindResolution, "cannot resolve project path", err)
		}
		return res, nil
	default:
		return nil, newError(KindConfiguration, "no makefile or project file set", nil)
	}
}

// classifyDiscoveryError maps a makefile-resolution failure onto the right
// error kind: tokenizer/classifier failures are command-parse errors,
// project-file/output-file shape failures are resolution errors, the rest
// is discovery.
func classifyDiscoveryError(err error) *Error {
	switch {
	case errors.Is(err, discover.ErrCommandParse):
		return newError(KindCommandParse, "cannot parse discovered qmake command", err)
	case errors.Is(err, discover.ErrCommandShape):
		return newError(KindResolution, "discovered qmake command is unusable", err)
	default:
		return newError(KindDiscovery, "cannot discover qmake command", err)
	}
}

// qmakeBinary picks the oracle binary: explicit override first, then the
// binary named in the discovered command, then $QMAKE, then PATH search.
func (p *Project) qmakeBinary(discovered string) (string, error) {
	if p.qmakeBin != "" {
		return p.qmakeBin, nil
	}
	if discovered != "" {
		return discovered, nil
	}
	if env := os.Getenv("QMAKE"); env != "" {
		return env, nil
	}
	for _, candidate := range qmakeCandidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", newError(KindConfiguration,
		"no qmake binary found (tried "+strings.Join(qmakeCandidates, ", ")+")", nil)
}
