// Package mcp exposes outlines and skeleton generation as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/project-outline/internal/config"
	"github.com/mvp-joe/project-outline/internal/outline"
	"github.com/mvp-joe/project-outline/internal/parsers"
	"github.com/mvp-joe/project-outline/internal/watcher"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("outline.mcp")

// Workspace outlines files of one project root through a shared extractor.
type Workspace struct {
	discovery *watcher.FileDiscovery
	ex        *outline.Extractor
	opts      outline.Options
}

// NewWorkspace creates a workspace for rootDir using cfg's patterns, cache
// size and outline options.
func NewWorkspace(rootDir string, cfg *config.Config) (*Workspace, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	discovery, err := watcher.NewFileDiscovery(rootDir, cfg.Paths.Code, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to create file discovery: %w", err)
	}

	ex, err := outline.NewExtractor(parsers.Resolver, cfg.Cache.MaxUnits)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	return &Workspace{discovery: discovery, ex: ex, opts: cfg.Options()}, nil
}

// Outline extracts path, resolved against the root when relative.
func (w *Workspace) Outline(ctx context.Context, path string, content *string) (*outline.Tree, error) {
	file := w.abs(path)

	if _, err := parsers.ForPath(file); err != nil {
		return nil, err
	}

	var text string
	if content != nil {
		text = *content
	} else {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		text = string(data)
	}

	return w.ex.Refresh(ctx, file, text, w.opts).Wait(ctx)
}

// Files lists the project's source files.
func (w *Workspace) Files() ([]string, error) {
	return w.discovery.DiscoverFiles()
}

// Root returns the project root.
func (w *Workspace) Root() string {
	return w.discovery.Root()
}

// Options returns the outline options in effect.
func (w *Workspace) Options() outline.Options {
	return w.opts
}

// Close waits for in-flight extractions.
func (w *Workspace) Close() {
	w.ex.Close()
}

func (w *Workspace) abs(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.Root(), path)
	}
	return filepath.Clean(path)
}

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	workspace *Workspace
	mcp       *server.MCPServer
}

// NewMCPServer creates an MCP server with every outline tool registered.
func NewMCPServer(rootDir string, cfg *config.Config, version string) (*MCPServer, error) {
	ws, err := NewWorkspace(rootDir, cfg)
	if err != nil {
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		"outline-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	AddOutlineTreeTool(mcpServer, ws)
	AddOutlineSkeletonTool(mcpServer, ws)
	AddOutlineImportsTool(mcpServer, ws)

	return &MCPServer{workspace: ws, mcp: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting MCP server on stdio for %s", s.workspace.Root())
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases all resources.
func (s *MCPServer) Close() error {
	if s.workspace != nil {
		s.workspace.Close()
	}
	return nil
}
