package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/mvp-joe/project-outline/internal/imports"
	"github.com/mvp-joe/project-outline/internal/outline"
	"github.com/mvp-joe/project-outline/internal/parsers"
	"github.com/mvp-joe/project-outline/internal/watcher"
	"github.com/spf13/cobra"
)

var watchTree bool

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-outline source files as they change",
	Long: `Watch outlines every source file under dir (default: current directory), then
watches the tree and re-outlines files as they are saved, created or removed.
Changes are debounced by watch.debounce_ms.

Send SIGHUP to reload the configuration and re-outline every file with the
new read-only marker and indent.

Examples:
  outline watch
  outline watch src --tree
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchTree, "tree", false, "Print the full outline of each changed file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	if root, err = filepath.Abs(root); err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	discovery, err := watcher.NewFileDiscovery(root, cfg.Paths.Code, cfg.Paths.Ignore)
	if err != nil {
		return err
	}
	files, err := discovery.DiscoverFiles()
	if err != nil {
		return fmt.Errorf("failed to discover files: %w", err)
	}

	fw, err := watcher.NewFileWatcher(discovery, cfg.Debounce())
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	ex, err := outline.NewExtractor(parsers.Resolver, cfg.Cache.MaxUnits)
	if err != nil {
		return err
	}
	defer ex.Close()

	out := cmd.OutOrStdout()
	coordinator := watcher.NewCoordinator(fw, ex, cfg.Options(), newUpdatePrinter(out, root, watchTree))

	fmt.Fprintf(out, "Outlining %s files in %s\n", formatNumber(len(files)), root)
	coordinator.Prime(ctx, files)
	fmt.Fprintln(out, "Watching for changes (Ctrl+C to stop)...")

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				reloaded, err := loadConfig(root)
				if err != nil {
					log.Errorf("keeping current configuration: %s", err.Error())
					continue
				}
				fmt.Fprintf(out, "Configuration reloaded, re-outlining %d files\n", coordinator.Tracked())
				coordinator.SetOptions(ctx, reloaded.Options())
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := coordinator.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintln(out, "\nStopped.")
	return nil
}

// newUpdatePrinter reports each watcher update on one line, followed by the
// rendered outline when showTree is set.
func newUpdatePrinter(out io.Writer, root string, showTree bool) func(watcher.Update) {
	var mu sync.Mutex
	return func(u watcher.Update) {
		mu.Lock()
		defer mu.Unlock()

		name := imports.Relative(root, []string{u.Path})[0]
		switch {
		case u.Removed:
			fmt.Fprintf(out, "- %s removed\n", name)
		case u.Err != nil:
			fmt.Fprintf(out, "✗ %s: %s\n", name, u.Err)
		default:
			fmt.Fprintf(out, "✓ %s: %d symbols\n", name, len(outline.Navigator{}.Flatten(u.Tree)))
			if showTree {
				renderTree(out, name, u.Tree)
			}
		}
	}
}
