package cli

import (
	"fmt"

	"github.com/mvp-joe/project-outline/internal/config"
	"github.com/mvp-joe/project-outline/internal/lsp"
	"github.com/spf13/cobra"
)

// lspCmd represents the lsp command
var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the Language Server Protocol server",
	Long: `Start a language server on stdio. It provides document symbols for open
TypeScript/JavaScript and PHP documents and the outline.skeleton command,
which returns the edits of a generated interface or class stub.

Project configuration is loaded from the workspace root sent by the client,
or from --config when given.
Logs go to stderr, or to --log when given.

Example:
  outline lsp --log /tmp/outline-lsp.log`,
	RunE: runLSP,
}

func init() {
	rootCmd.AddCommand(lspCmd)
}

func runLSP(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := loadConfig(".")
		if err != nil {
			return err
		}
		cfg = loaded
	}

	server, err := lsp.NewServer(cfg, Version, loaderOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create language server: %w", err)
	}
	defer server.Close()

	return server.RunStdio()
}
