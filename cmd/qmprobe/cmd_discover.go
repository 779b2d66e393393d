package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qmprobe/internal/cmdline"
	"qmprobe/internal/discover"
	"qmprobe/internal/invoke"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [MAKEFILE]",
	Short: "Show the qmake command behind an existing Makefile",
	Long: `Recover the qmake invocation that would regenerate a Makefile, via a
make dry run, and show how qmprobe classifies it. Useful for diagnosing a
probe that fails during discovery.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "Makefile"
		if len(args) == 1 {
			target = args[0]
		} else if makefile != "" {
			target = makefile
		}

		runner := &invoke.HostRunner{}
		command, err := discover.CommandFromMakefile(cmd.Context(), runner, cfg.Make, target)
		if err != nil {
			return err
		}
		fmt.Printf("command: %s\n", command)

		tokens, err := cmdline.SplitCommand(command)
		if err != nil {
			return err
		}
		parsed, err := cmdline.ParseCommand(tokens)
		if err != nil {
			return err
		}
		fmt.Printf("binary: %s\n", parsed.Binary)
		fmt.Printf("output file: %s\n", parsed.OutputFile)
		for _, pro := range parsed.ProjectFiles {
			fmt.Printf("project file: %s\n", pro)
		}
		if len(parsed.Passthrough) > 0 {
			fmt.Printf("passthrough: %s\n", cmdline.JoinCommand(parsed.Passthrough))
		}
		return nil
	},
}
