package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mvp-joe/project-outline/internal/config"
	"github.com/mvp-joe/project-outline/internal/outline"
	"github.com/mvp-joe/project-outline/internal/parsers"
	"github.com/spf13/cobra"
)

var (
	skeletonClass     bool
	skeletonInterface bool
	skeletonOutput    string
	skeletonForce     bool
)

// skeletonCmd represents the skeleton command
var skeletonCmd = &cobra.Command{
	Use:   "skeleton <file> <source> <name>",
	Short: "Generate an interface or class stub from an existing declaration",
	Long: `Skeleton reads the class or interface <source> from <file> and emits a new
declaration called <name> with its public constants and public methods.

By default the result is an interface. With --class it is a class whose
methods throw "Not implemented".

Examples:
  # Extract an interface from a class
  outline skeleton src/user-service.ts UserService UserServiceContract

  # Write a throwing class stub to a file
  outline skeleton src/repo.ts Repository MemoryRepository --class -o src/memory.ts
`,
	Args: cobra.ExactArgs(3),
	RunE: runSkeleton,
}

func init() {
	rootCmd.AddCommand(skeletonCmd)
	skeletonCmd.Flags().BoolVar(&skeletonClass, "class", false, "Emit a class with method bodies")
	skeletonCmd.Flags().BoolVar(&skeletonInterface, "interface", false, "Emit an interface (default)")
	skeletonCmd.Flags().StringVarP(&skeletonOutput, "output", "o", "", "Write to this file instead of stdout")
	skeletonCmd.Flags().BoolVar(&skeletonForce, "force", false, "Overwrite the output file if it exists")
	skeletonCmd.MarkFlagsMutuallyExclusive("class", "interface")
}

func runSkeleton(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	if skeletonOutput == "" {
		return executeSkeleton(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], args[1], args[2], skeletonClass)
	}

	var buf bytes.Buffer
	if err := executeSkeleton(cmd.Context(), &buf, cfg, args[0], args[1], args[2], skeletonClass); err != nil {
		return err
	}
	return writeOutput(skeletonOutput, buf.Bytes(), skeletonForce)
}

// writeOutput writes data to path, refusing to replace an existing file
// unless force is set.
func writeOutput(path string, data []byte, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	return f.Close()
}

// executeSkeleton outlines file and writes the stub generated from source.
func executeSkeleton(ctx context.Context, out io.Writer, cfg *config.Config, file, source, name string, includeBodies bool) error {
	parser, err := parsers.ForPath(file)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	opts := cfg.Options()
	tree, err := outline.Extract(ctx, parser, string(data), opts)
	if err != nil {
		return fmt.Errorf("failed to outline %s: %w", file, err)
	}

	edits, err := outline.Skeleton(tree, source, name, includeBodies, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	log.Debugf("emitting %s from %s (%d lines)", name, source, len(edits))
	_, err = io.WriteString(out, outline.Render(edits))
	return err
}
