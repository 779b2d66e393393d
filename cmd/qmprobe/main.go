// qmprobe extracts variable values and boolean-test results from qmake
// projects by driving the real qmake binary as an oracle. See the probe
// package for the mechanism; this command is the thin CLI over it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qmprobe/internal/config"
	"qmprobe/internal/logging"
)

var (
	// Global flags
	configPath string
	qmakeBin   string
	makeBin    string
	makefile   string
	proPath    string
	dirs       []string
	keepGoing  bool
	format     string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "qmprobe",
	Short: "Query qmake project variables and tests without parsing qmake",
	Long: `qmprobe answers questions like "what is TARGET in this .pro file" or
"does CONFIG(debug, debug|release) hold" by running qmake itself against a
rewritten copy of the project and decoding marker lines from its output.

The project can be named directly (--pro) or located through an existing
Makefile (--makefile), in which case the original qmake invocation is
recovered from a make dry run and replayed faithfully.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if qmakeBin != "" {
			cfg.Qmake = qmakeBin
		}
		if makeBin != "" {
			cfg.Make = makeBin
		}
		if keepGoing {
			cfg.KeepGoing = true
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		return logging.Initialize(level, cfg.Logging.Format, cfg.Logging.File)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default "+config.DefaultFileName+")")
	pf.StringVar(&qmakeBin, "qmake", "", "qmake binary (default: discovered)")
	pf.StringVar(&makeBin, "make", "", "make binary used for command discovery")
	pf.StringVar(&makefile, "makefile", "", "resolve the project through an existing Makefile")
	pf.StringVar(&proPath, "pro", "", "project file or directory containing one")
	pf.StringArrayVarP(&dirs, "dir", "C", nil, "project directory; repeatable to probe several projects")
	pf.BoolVarP(&keepGoing, "keep-going", "k", false, "warn instead of failing; unresolved values come back absent")
	pf.StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(varCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
