package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"qmprobe/internal/discover"
	"qmprobe/internal/logging"
)

// debounceWindow coalesces the bursts of write events editors produce for
// a single save.
const debounceWindow = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch NAME...",
	Short: "Re-probe variables whenever the project file changes",
	Long: `Watch the project file and re-print the requested variables after every
change. Each run uses a fresh project handle, so values always reflect the
file on disk. Intended as CI/editor glue; stop with Ctrl-C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if makefile != "" {
			return fmt.Errorf("watch mode follows the project file; --makefile is not supported")
		}
		target := proPath
		if target == "" {
			if len(dirs) == 1 {
				target = dirs[0]
			} else {
				target = "."
			}
		}
		res, err := discover.ResolveFromProjectPath(target)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return watchProject(ctx, res.ProjectFile, args)
	},
}

func watchProject(ctx context.Context, projectFile string, names []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save,
	// which drops a file-level watch.
	dir := filepath.Dir(projectFile)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %q: %w", dir, err)
	}
	base := filepath.Base(projectFile)

	probeOnce := func() {
		r, err := probeTarget(ctx, projectFile, names, nil)
		if err != nil {
			logging.WatchWarn("probe failed: %v", err)
			fmt.Printf("# probe failed: %v\n", err)
			return
		}
		if err := emit([]*report{r}, false); err != nil {
			logging.WatchWarn("emit failed: %v", err)
		}
	}

	logging.Watch("watching %s", projectFile)
	probeOnce()

	var debounce *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			probeOnce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.WatchWarn("watch error: %v", err)
		}
	}
}
