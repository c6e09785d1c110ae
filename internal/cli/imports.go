package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/project-outline/internal/config"
	"github.com/mvp-joe/project-outline/internal/imports"
	"github.com/mvp-joe/project-outline/internal/outline"
	"github.com/mvp-joe/project-outline/internal/parsers"
	"github.com/spf13/cobra"
)

var importsJSON bool

// importsCmd represents the imports command
var importsCmd = &cobra.Command{
	Use:   "imports [dir]",
	Short: "Show the import graph of a project",
	Long: `Imports outlines every source file under dir (default: current directory),
resolves relative imports between them and prints the files in dependency
order, imported files first. Import cycles are reported instead of an order
and make the command fail.

Examples:
  outline imports
  outline imports src --json
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImports,
}

func init() {
	rootCmd.AddCommand(importsCmd)
	importsCmd.Flags().BoolVar(&importsJSON, "json", false, "Output as JSON")
}

func runImports(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	root, err := projectRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	return executeImports(ctx, cmd.OutOrStdout(), cfg, root, importsJSON)
}

// importsReport is the JSON form of the imports command.
type importsReport struct {
	Order      []string            `json:"order,omitempty"`
	Cycles     [][]string          `json:"cycles,omitempty"`
	External   map[string][]string `json:"external,omitempty"`
	ImportedBy map[string][]string `json:"imported_by,omitempty"`
}

// executeImports builds the import graph of root and writes the report.
// It fails with imports.ErrCycle after reporting cycles.
func executeImports(ctx context.Context, out io.Writer, cfg *config.Config, root string, asJSON bool) error {
	files, err := collectFiles(cfg, []string{root})
	if err != nil {
		return err
	}

	ex, err := outline.NewExtractor(parsers.Resolver, cfg.Cache.MaxUnits)
	if err != nil {
		return err
	}
	defer ex.Close()

	result, err := outlineFiles(ctx, ex, files, cfg.Options(), nil)
	if err != nil {
		return err
	}
	for file, ferr := range result.Errors {
		log.Warningf("skipping %s: %s", file, ferr.Error())
	}

	g, err := imports.Build(result.Trees)
	if err != nil {
		return err
	}
	cycles, err := g.Cycles()
	if err != nil {
		return err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	report := importsReport{
		External:   make(map[string][]string),
		ImportedBy: make(map[string][]string),
	}
	for _, c := range cycles {
		report.Cycles = append(report.Cycles, imports.Relative(absRoot, c))
	}
	var order []string
	if len(cycles) == 0 {
		if order, err = g.Order(); err != nil {
			return err
		}
		report.Order = imports.Relative(absRoot, order)
	}
	for _, file := range g.Files() {
		name := imports.Relative(absRoot, []string{file})[0]
		if ext := g.External(file); len(ext) > 0 {
			report.External[name] = ext
		}
		dependents, err := g.Dependents(file)
		if err != nil {
			return err
		}
		if len(dependents) > 0 {
			report.ImportedBy[name] = imports.Relative(absRoot, dependents)
		}
	}

	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		writeImportsReport(out, report, g, absRoot, order)
	}

	if len(cycles) > 0 {
		return fmt.Errorf("%w: %d cycle(s) found", imports.ErrCycle, len(cycles))
	}
	return nil
}

// writeImportsReport prints cycles, or the order with each file's direct
// dependencies. order holds the absolute paths behind report.Order.
func writeImportsReport(out io.Writer, report importsReport, g *imports.Graph, root string, order []string) {
	if len(report.Cycles) > 0 {
		fmt.Fprintln(out, "Import cycles:")
		for _, c := range report.Cycles {
			fmt.Fprintf(out, "  %s -> %s\n", strings.Join(c, " -> "), c[0])
		}
		return
	}

	fmt.Fprintln(out, "Dependency order:")
	for i, file := range report.Order {
		fmt.Fprintf(out, "  %d. %s", i+1, file)
		deps, err := g.Dependencies(order[i])
		if err == nil && len(deps) > 0 {
			fmt.Fprintf(out, " (imports %s)", strings.Join(imports.Relative(root, deps), ", "))
		}
		fmt.Fprintln(out)
	}
}
