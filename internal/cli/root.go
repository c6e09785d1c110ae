package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/project-outline/internal/config"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var (
	cfgFile string
	logFile string
	verbose bool
)

var log = commonlog.GetLogger("outline.cli")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "outline",
	Short: "Outline - structural outlines and skeletons for TypeScript and PHP",
	Long: `Outline extracts classes, interfaces, functions, variables and imports from
TypeScript/JavaScript and PHP sources, and generates interface or class
skeletons from existing declarations.

It runs as a one-shot CLI, a file watcher, a language server (lsp) or an
MCP server (mcp).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .outline/config.yml in the project root)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write logs to this file instead of stderr")
}

// configureLogging sets the commonlog verbosity: warnings by default,
// everything with --verbose.
func configureLogging() {
	verbosity := -1
	if verbose {
		verbosity = 2
	}
	commonlog.Initialize(verbosity, logFile)
}

// loaderOptions returns the config loader options set by global flags.
func loaderOptions() []config.LoaderOption {
	var opts []config.LoaderOption
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	return opts
}

// loadConfig loads configuration for rootDir, honoring --config.
func loadConfig(rootDir string) (*config.Config, error) {
	cfg, err := config.LoadConfigFromDir(rootDir, loaderOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfgFile != "" {
		log.Infof("using config file %s", cfgFile)
	}
	return cfg, nil
}

// projectRoot returns args[0] when given, otherwise the working directory.
func projectRoot(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}
