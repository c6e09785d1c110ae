package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/project-outline/internal/imports"
	"github.com/mvp-joe/project-outline/internal/outline"
	"github.com/mvp-joe/project-outline/internal/parsers"
)

// Source supplies outlines to the tools.
type Source interface {
	// Outline extracts path, from content when it is non-nil and from disk otherwise.
	Outline(ctx context.Context, path string, content *string) (*outline.Tree, error)
	// Files lists the project's source files.
	Files() ([]string, error)
	Root() string
	Options() outline.Options
}

// AddOutlineTreeTool registers the outline_tree tool with an MCP server.
func AddOutlineTreeTool(s *server.MCPServer, src Source) {
	tool := mcp.NewTool(
		"outline_tree",
		mcp.WithDescription(`Structural outline of one TypeScript/JavaScript or PHP file.

Returns classes, interfaces, functions, variables and imports with their
visibility, static/readonly flags, types, default values and source ranges.
Read-only constants and properties carry the read-only marker as a name prefix.

Pass "content" to outline unsaved text instead of the file on disk.`),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path, absolute or relative to the project root")),
		mcp.WithString("content",
			mcp.Description("Source text to outline in place of the file's content")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createTreeHandler(src))
}

// AddOutlineSkeletonTool registers the outline_skeleton tool with an MCP server.
func AddOutlineSkeletonTool(s *server.MCPServer, src Source) {
	tool := mcp.NewTool(
		"outline_skeleton",
		mcp.WithDescription(`Generate an interface or class stub from an existing class or interface.

The stub keeps public constants and public method signatures. With
include_bodies=true it is a class whose methods throw "Not implemented";
otherwise it is an interface of method declarations.`),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File that declares the source class or interface")),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the source class or interface")),
		mcp.WithString("entity",
			mcp.Required(),
			mcp.Description("Name of the generated declaration")),
		mcp.WithBoolean("include_bodies",
			mcp.Description("Emit a class with method bodies instead of an interface (default: false)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSkeletonHandler(src))
}

// AddOutlineImportsTool registers the outline_imports tool with an MCP server.
func AddOutlineImportsTool(s *server.MCPServer, src Source) {
	tool := mcp.NewTool(
		"outline_imports",
		mcp.WithDescription(`Import graph of the project's source files.

Returns the files in dependency order (imported files first), any import
cycles, and the external modules each file imports.`),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createImportsHandler(src))
}

func createTreeHandler(src Source) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		path, err := parseStringArg(argsMap, "path", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var content *string
		if _, ok := argsMap["content"]; ok {
			text, err := parseStringArg(argsMap, "content", false)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			content = &text
		}

		parser, err := parsers.ForPath(path)
		if err != nil {
			return outlineError(err)
		}
		tree, err := src.Outline(ctx, path, content)
		if err != nil {
			return outlineError(err)
		}

		return marshalToolResponse(&OutlineTreeResponse{
			Path:         path,
			Language:     parser.Language(),
			Tree:         tree,
			TotalSymbols: len(outline.Navigator{}.Flatten(tree)),
			Metadata:     ResponseMetadata{TookMs: int(time.Since(startTime).Milliseconds())},
		})
	}
}

func createSkeletonHandler(src Source) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		var args OutlineSkeletonRequest
		var err error
		if args.Path, err = parseStringArg(argsMap, "path", true); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if args.Name, err = parseStringArg(argsMap, "name", true); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if args.Entity, err = parseStringArg(argsMap, "entity", true); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := bindArguments(argsMap, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		tree, err := src.Outline(ctx, args.Path, nil)
		if err != nil {
			return outlineError(err)
		}

		edits, err := outline.Skeleton(tree, args.Name, args.Entity, args.IncludeBodies, src.Options())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return marshalToolResponse(&OutlineSkeletonResponse{
			Path:          args.Path,
			Source:        args.Name,
			Entity:        args.Entity,
			IncludeBodies: args.IncludeBodies,
			Content:       outline.Render(edits),
			Edits:         edits,
			Metadata:      ResponseMetadata{TookMs: int(time.Since(startTime).Milliseconds())},
		})
	}
}

func createImportsHandler(src Source) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		files, err := src.Files()
		if err != nil {
			return nil, fmt.Errorf("failed to discover files: %w", err)
		}

		trees := make(map[string]*outline.Tree, len(files))
		var failed []string
		for _, file := range files {
			tree, err := src.Outline(ctx, file, nil)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				failed = append(failed, file)
				continue
			}
			trees[file] = tree
		}

		g, err := imports.Build(trees)
		if err != nil {
			return nil, fmt.Errorf("failed to build import graph: %w", err)
		}

		cycles, err := g.Cycles()
		if err != nil {
			return nil, fmt.Errorf("failed to detect cycles: %w", err)
		}

		root := src.Root()
		response := &OutlineImportsResponse{
			TotalFiles: len(trees),
			Failed:     imports.Relative(root, failed),
			External:   make(map[string][]string),
		}
		for _, c := range cycles {
			response.Cycles = append(response.Cycles, imports.Relative(root, c))
		}
		if len(cycles) == 0 {
			order, err := g.Order()
			if err != nil {
				return nil, fmt.Errorf("failed to order files: %w", err)
			}
			response.Order = imports.Relative(root, order)
		}
		for _, file := range g.Files() {
			if ext := g.External(file); len(ext) > 0 {
				response.External[imports.Relative(root, []string{file})[0]] = ext
			}
		}
		response.Metadata = ResponseMetadata{TookMs: int(time.Since(startTime).Milliseconds())}

		return marshalToolResponse(response)
	}
}

// outlineError turns caller mistakes into tool errors and reports everything
// else as a system error.
func outlineError(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if errors.Is(err, parsers.ErrUnsupportedLanguage) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to outline: %s", err)), nil
}

// OutlineTreeResponse represents the JSON response schema for the outline_tree MCP tool.
type OutlineTreeResponse struct {
	Path         string           `json:"path"`
	Language     string           `json:"language"`
	Tree         *outline.Tree    `json:"tree"`
	TotalSymbols int              `json:"total_symbols"`
	Metadata     ResponseMetadata `json:"metadata"`
}

// OutlineSkeletonRequest represents the JSON request schema for the outline_skeleton MCP tool.
type OutlineSkeletonRequest struct {
	Path          string `json:"path" jsonschema:"required,description=File declaring the source entity"`
	Name          string `json:"name" jsonschema:"required,description=Source class or interface"`
	Entity        string `json:"entity" jsonschema:"required,description=Generated declaration name"`
	IncludeBodies bool   `json:"include_bodies,omitempty" jsonschema:"default=false"`
}

// OutlineSkeletonResponse represents the JSON response schema for the outline_skeleton MCP tool.
type OutlineSkeletonResponse struct {
	Path          string             `json:"path"`
	Source        string             `json:"source"`
	Entity        string             `json:"entity"`
	IncludeBodies bool               `json:"include_bodies"`
	Content       string             `json:"content"`
	Edits         []outline.TextEdit `json:"edits"`
	Metadata      ResponseMetadata   `json:"metadata"`
}

// OutlineImportsResponse represents the JSON response schema for the outline_imports MCP tool.
// Order is empty when the graph has cycles.
type OutlineImportsResponse struct {
	TotalFiles int                 `json:"total_files"`
	Order      []string            `json:"order,omitempty"`
	Cycles     [][]string          `json:"cycles,omitempty"`
	External   map[string][]string `json:"external"`
	Failed     []string            `json:"failed,omitempty"`
	Metadata   ResponseMetadata    `json:"metadata"`
}

// ResponseMetadata contains timing information.
type ResponseMetadata struct {
	TookMs int `json:"took_ms"`
}
