package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/project-outline/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for code outlines",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered coding
assistants read the structure of your codebase.

The MCP server provides:
- outline_tree: the outline of one file (or of unsaved content)
- outline_skeleton: an interface or class stub generated from a declaration
- outline_imports: the project's import graph in dependency order

It communicates via stdio (standard MCP transport) and serves the current
directory.

Example:
  outline mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	projectPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := loadConfig(projectPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Outline MCP Server\n")
	fmt.Fprintf(os.Stderr, "Project: %s\n\n", projectPath)

	server, err := mcp.NewMCPServer(projectPath, cfg, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	// Serve (blocks until shutdown)
	if err := server.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
