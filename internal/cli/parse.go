package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/mvp-joe/project-outline/internal/config"
	"github.com/mvp-joe/project-outline/internal/imports"
	"github.com/mvp-joe/project-outline/internal/outline"
	"github.com/mvp-joe/project-outline/internal/parsers"
	"github.com/mvp-joe/project-outline/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	parseFormat string
	parseQuiet  bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [paths...]",
	Short: "Print the outline of source files",
	Long: `Parse outlines TypeScript/JavaScript and PHP files and prints their classes,
interfaces, functions, variables and imports.

Directories are searched with the configured code and ignore patterns.
With no arguments the current directory is outlined.

Examples:
  # Outline one file
  outline parse src/service.ts

  # Outline a project as JSON
  outline parse --format json > outline.json

  # Outline a directory without progress output
  outline parse src --quiet
`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "text", "Output format: text or json")
	parseCmd.Flags().BoolVarP(&parseQuiet, "quiet", "q", false, "Disable progress output")
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{root}
	}

	return executeParse(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, root, args, parseFormat, parseQuiet)
}

// executeParse outlines paths and writes the result to out. Paths are shown
// relative to root. Progress and per-file failures go to errOut.
func executeParse(ctx context.Context, out, errOut io.Writer, cfg *config.Config, root string, paths []string, format string, quiet bool) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}

	files, err := collectFiles(cfg, paths)
	if err != nil {
		return err
	}

	ex, err := outline.NewExtractor(parsers.Resolver, cfg.Cache.MaxUnits)
	if err != nil {
		return err
	}
	defer ex.Close()

	progress := newProgressReporter(errOut, quiet || len(files) < 2)
	progress.OnDiscoveryComplete(len(files))
	progress.OnStart(len(files))

	start := time.Now()
	result, err := outlineFiles(ctx, ex, files, cfg.Options(), progress)
	if err != nil {
		return err
	}

	stats := outlineStats{Files: len(result.Trees), Failed: len(result.Errors), Duration: time.Since(start)}
	for _, tree := range result.Trees {
		stats.Symbols += len(outline.Navigator{}.Flatten(tree))
	}
	progress.OnComplete(stats)

	names := make(map[string]string, len(files))
	for i, rel := range imports.Relative(root, files) {
		names[files[i]] = rel
	}

	switch format {
	case "json":
		byName := make(map[string]*outline.Tree, len(result.Trees))
		for file, tree := range result.Trees {
			byName[names[file]] = tree
		}
		data, err := json.MarshalIndent(byName, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal outline: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default:
		first := true
		for _, file := range files {
			tree, ok := result.Trees[file]
			if !ok {
				continue
			}
			if !first {
				fmt.Fprintln(out)
			}
			first = false
			renderTree(out, names[file], tree)
		}
	}

	if len(result.Errors) > 0 {
		failed := make([]string, 0, len(result.Errors))
		for file := range result.Errors {
			failed = append(failed, file)
		}
		sort.Strings(failed)
		for _, file := range failed {
			fmt.Fprintf(errOut, "✗ %s: %s\n", names[file], result.Errors[file])
		}
		return fmt.Errorf("%d of %d files failed", len(result.Errors), len(files))
	}
	return nil
}

// collectFiles expands directories with the configured patterns and keeps
// explicit files as given. The result is sorted and unique.
func collectFiles(cfg *config.Config, paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}

		if !info.IsDir() {
			if _, err := parsers.ForPath(abs); err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			add(abs)
			continue
		}

		discovery, err := watcher.NewFileDiscovery(abs, cfg.Paths.Code, cfg.Paths.Ignore)
		if err != nil {
			return nil, err
		}
		found, err := discovery.DiscoverFiles()
		if err != nil {
			return nil, fmt.Errorf("failed to discover files in %s: %w", p, err)
		}
		for _, f := range found {
			if parsers.Supported(f) {
				add(f)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// signalContext returns a context canceled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
