package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"qmprobe/internal/probe"
)

// report is the per-target query result for structured output.
type report struct {
	Target    string              `json:"target" yaml:"target"`
	Variables map[string][]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Tests     map[string]bool     `json:"tests,omitempty" yaml:"tests,omitempty"`
}

var varCmd = &cobra.Command{
	Use:   "var NAME...",
	Short: "Print the value of one or more qmake variables",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd.Context(), args, nil)
	},
}

var testCmd = &cobra.Command{
	Use:   "test EXPR...",
	Short: "Evaluate one or more qmake boolean tests",
	Long: `Evaluate qmake test expressions, for example:

  qmprobe test 'CONFIG(debug, debug|release)' 'contains(QT, network)'

Prints 1 for a test that holds and 0 for one that does not. The exit code
is 0 when all tests hold, 1 otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd.Context(), nil, args)
	},
}

// runQuery probes every target for the given variables and tests. Targets
// are independent projects, so they fan out on an errgroup with one
// Project handle per goroutine.
func runQuery(ctx context.Context, variables, tests []string) error {
	targets, err := queryTargets()
	if err != nil {
		return err
	}

	reports := make([]*report, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			r, err := probeTarget(gctx, target, variables, tests)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := emit(reports, len(targets) > 1); err != nil {
		return err
	}

	for _, r := range reports {
		for _, held := range r.Tests {
			if !held {
				os.Exit(1)
			}
		}
	}
	return nil
}

// queryTargets determines which projects to probe from the global flags:
// --makefile and --pro name one target, -C may name several, the default
// is the working directory.
func queryTargets() ([]string, error) {
	set := 0
	if makefile != "" {
		set++
	}
	if proPath != "" {
		set++
	}
	if len(dirs) > 0 {
		set++
	}
	if set > 1 {
		return nil, fmt.Errorf("--makefile, --pro and -C are mutually exclusive")
	}

	switch {
	case makefile != "":
		return []string{makefile}, nil
	case proPath != "":
		return []string{proPath}, nil
	case len(dirs) > 0:
		return dirs, nil
	default:
		return []string{"."}, nil
	}
}

func newProject(target string) *probe.Project {
	var p *probe.Project
	if makefile != "" {
		p = probe.New()
		p.SetMakeFile(target)
	} else {
		p = probe.NewFromPath(target)
	}
	p.SetMake(cfg.Make)
	if cfg.Qmake != "" {
		p.SetQmake(cfg.Qmake)
	}
	p.SetFailFast(!cfg.KeepGoing)
	return p
}

func probeTarget(ctx context.Context, target string, variables, tests []string) (*report, error) {
	p := newProject(target)

	varHandles := make(map[string]*probe.Value, len(variables))
	for _, name := range variables {
		varHandles[name] = p.Variable(name)
	}
	testHandles := make(map[string]*probe.Value, len(tests))
	for _, expr := range tests {
		testHandles[expr] = p.Test(expr)
	}

	r := &report{Target: target}
	if len(varHandles) > 0 {
		r.Variables = make(map[string][]string, len(varHandles))
	}
	if len(testHandles) > 0 {
		r.Tests = make(map[string]bool, len(testHandles))
	}

	for name, h := range varHandles {
		elems, err := h.AsList(ctx)
		if err != nil {
			return nil, err
		}
		r.Variables[name] = elems
	}
	for expr, h := range testHandles {
		held, err := h.AsBool(ctx)
		if err != nil {
			return nil, err
		}
		r.Tests[expr] = held
	}
	return r, nil
}

// emit writes the reports in the selected format. Text output stays
// grep-friendly: one name per line, target-prefixed only when probing
// several projects.
func emit(reports []*report, multi bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(reports)
	case "text":
		for _, r := range reports {
			prefix := ""
			if multi {
				prefix = r.Target + ": "
			}
			for name, elems := range r.Variables {
				fmt.Printf("%s%s = %s\n", prefix, name, strings.Join(elems, " "))
			}
			for expr, held := range r.Tests {
				flag := "0"
				if held {
					flag = "1"
				}
				fmt.Printf("%s%s = %s\n", prefix, expr, flag)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
