package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/discover"
	stacklint "github.com/VPPATEL-SPS/aws-cdk-examples/internal/lint"
)

// newWatchCmd creates the "watch" subcommand for relinting on file changes.
func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Relint stack sources on change",
		Long: `Watch monitors stack source directories and rechecks them on every change.

The watch command:
- Monitors the directories for .go file changes
- Runs lint on each change
- Runs discovery to catch undefined references
- Debounces rapid changes to avoid excessive rechecks

Without arguments the directories of the selected stacks are watched.
Templates reflect the compiled stacks, so run synth after rebuilding stackctl.

Examples:
    stackctl watch
    stackctl watch stacks/httpapi --debounce 1s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.OutOrStdout(), args, debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")

	return cmd
}

// runWatch monitors the directories and rechecks them on changes.
func (a *app) runWatch(w io.Writer, args []string, debounce time.Duration) error {
	dirs, err := a.watchDirs(args)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		fmt.Fprintf(w, "Watching: %s\n", dir)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	for _, dir := range dirs {
		a.recheck(w, dir)
	}

	var debounceTimer *time.Timer
	changed := make(chan string, len(dirs))

	fmt.Fprintln(w, "\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".go") || strings.HasSuffix(event.Name, "_test.go") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			dir := filepath.Dir(event.Name)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case changed <- dir:
				default:
				}
			})

		case dir := <-changed:
			fmt.Fprintf(w, "\n[%s] Change detected in %s\n", time.Now().Format("15:04:05"), dir)
			a.recheck(w, dir)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Error("watch error", "err", err)

		case <-sigChan:
			fmt.Fprintln(w, "\nStopping watch...")
			return nil
		}
	}
}

// watchDirs resolves the directories to watch: args, or the source
// directories of the selected stacks.
func (a *app) watchDirs(args []string) ([]string, error) {
	if len(args) == 0 {
		selected, err := a.selectStacks(nil)
		if err != nil {
			return nil, err
		}
		for _, s := range selected {
			args = append(args, s.Dir)
		}
	}

	var dirs []string
	seen := make(map[string]bool)
	for _, arg := range args {
		abs, err := filepath.Abs(strings.TrimSuffix(arg, "/..."))
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot watch %s: %w", arg, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("cannot watch %s: not a directory", arg)
		}
		if !seen[abs] {
			seen[abs] = true
			dirs = append(dirs, abs)
		}
	}
	return dirs, nil
}

// recheck lints and discovers one directory and reports whether it is clean.
func (a *app) recheck(w io.Writer, dir string) bool {
	clean := true

	res, err := stacklint.LintPackage(dir, a.lintOptions())
	if err != nil {
		a.log.Error("lint failed", "dir", dir, "err", err)
		return false
	}
	for _, issue := range res.Issues {
		clean = false
		fmt.Fprintf(w, "%s:%d:%d: %s: %s [%s]\n",
			issue.File, issue.Line, issue.Column, issue.Severity, issue.Message, issue.Rule)
	}

	result, err := discover.Discover(discover.Options{Packages: []string{dir}})
	if err != nil {
		a.log.Error("discovery failed", "dir", dir, "err", err)
		return false
	}
	for _, e := range result.Errors {
		clean = false
		fmt.Fprintf(w, "error: %v\n", e)
	}

	if clean {
		a.log.PrintGreen(w, fmt.Sprintf("✓ %s: %d resources, no issues", filepath.Base(dir), len(result.Resources)))
	} else {
		a.log.PrintRed(w, fmt.Sprintf("✗ %s", filepath.Base(dir)))
	}
	return clean
}
