package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/cubelab/solfilter/domain"
	"github.com/cubelab/solfilter/service"
)

// WatchCommand represents the watch command
type WatchCommand struct {
	labelOptions
	debounce time.Duration
}

// NewWatchCommand creates a new watch command
func NewWatchCommand() *WatchCommand {
	return &WatchCommand{
		debounce: time.Duration(domain.DefaultWatchDebounceMillis) * time.Millisecond,
	}
}

// CreateCobraCommand creates the cobra command for watching solution files
func (c *WatchCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <files...>",
		Short: "Relabel solution files whenever they change",
		Long: `Label the given solution files, then label them again every time one
of them is written. Accepts the same flags as 'solfilter label'.

Examples:
  # Keep a report of the best ten solutions up to date
  solfilter watch --top 10 oll27.txt

  # Regenerate a JSON file on every change
  solfilter watch --json -o oll27.json oll27.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runWatch,
	}

	c.addFlags(cmd)
	cmd.Flags().DurationVar(&c.debounce, "debounce", c.debounce, "Quiet period before relabeling after a change")

	return cmd
}

func (c *WatchCommand) runWatch(cmd *cobra.Command, args []string) error {
	files, err := service.NewSolutionReader().CollectFiles(args)
	if err != nil {
		return err
	}
	for _, file := range files {
		if file == service.StdinPath {
			return fmt.Errorf("watch cannot read from stdin")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files on save, so watch the parent directories
	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			abs = file
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	c.runOnce(ctx, cmd, files)
	return c.watchLoop(ctx, cmd, watcher, watched, files)
}

// watchLoop relabels after a quiet period following changes to watched files
func (c *WatchCommand) watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher, watched map[string]bool, files []string) error {
	timer := time.NewTimer(c.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[event.Name] || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(c.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  watch error: %v\n", err)
		case <-timer.C:
			c.runOnce(ctx, cmd, files)
		}
	}
}

// runOnce labels the files and reports failures without stopping the watch
func (c *WatchCommand) runOnce(ctx context.Context, cmd *cobra.Command, files []string) {
	req, err := c.buildRequest(cmd, files)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "❌ %v\n", err)
		return
	}

	useCase, err := c.buildUseCase(cmd, req)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "❌ %v\n", err)
		return
	}

	if err := useCase.Execute(ctx, req); err != nil {
		printCategorizedError(cmd, err)
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "👀 Watching %d file(s), press Ctrl+C to stop\n", len(files))
}

// NewWatchCmd creates and returns the watch cobra command
func NewWatchCmd() *cobra.Command {
	return NewWatchCommand().CreateCobraCommand()
}
