package lsp

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/mvp-joe/project-outline/internal/outline"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SkeletonCommand generates a stub from a class or interface in an open
// document. Arguments: uri, source name, new entity name, and optionally
// includeBodies (bool) and a target uri.
const SkeletonCommand = "outline.skeleton"

// ErrInvalidArguments is returned when a command is called with arguments of
// the wrong count or type.
var ErrInvalidArguments = errors.New("invalid command arguments")

// SkeletonResult is returned by SkeletonCommand. Edit creates Target and
// inserts the stub; Target defaults to `<entity><ext>` next to the source
// document.
type SkeletonResult struct {
	Target  protocol.DocumentUri   `json:"target"`
	Content string                 `json:"content"`
	Edit    protocol.WorkspaceEdit `json:"edit"`
}

type skeletonArgs struct {
	uri           protocol.DocumentUri
	name          string
	entity        string
	includeBodies bool
	target        protocol.DocumentUri
}

func (ls *Server) workspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	switch params.Command {
	case SkeletonCommand:
		args, err := parseSkeletonArgs(params.Arguments)
		if err != nil {
			return nil, err
		}
		return ls.skeleton(args)
	default:
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
}

func (ls *Server) skeleton(args skeletonArgs) (*SkeletonResult, error) {
	tree, err := ls.tree(args.uri)
	if tree == nil {
		if err == nil {
			err = fmt.Errorf("%w: %s", outline.ErrNotExtracted, args.uri)
		}
		return nil, err
	}

	edits, err := outline.Skeleton(tree, args.name, args.entity, args.includeBodies, ls.options())
	if err != nil {
		return nil, err
	}

	target := args.target
	if target == "" {
		target = siblingURI(args.uri, args.entity)
	}

	content := outline.Render(edits)
	log.Infof("generated %s from %s (%d lines)", args.entity, args.name, len(edits))

	return &SkeletonResult{
		Target:  target,
		Content: content,
		Edit:    createEdit(target, content),
	}, nil
}

// createEdit creates target and inserts content at its start. An existing
// target is kept and the content is inserted before its text.
func createEdit(target protocol.DocumentUri, content string) protocol.WorkspaceEdit {
	return protocol.WorkspaceEdit{
		DocumentChanges: []any{
			protocol.CreateFile{
				Kind:    "create",
				URI:     target,
				Options: &protocol.CreateFileOptions{IgnoreIfExists: boolPtr(true)},
			},
			protocol.TextDocumentEdit{
				TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
					TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: target},
				},
				Edits: []any{protocol.TextEdit{NewText: content}},
			},
		},
	}
}

func parseSkeletonArgs(raw []any) (skeletonArgs, error) {
	var args skeletonArgs
	if len(raw) < 3 || len(raw) > 5 {
		return args, fmt.Errorf("%w: %s expects 3 to 5 arguments, got %d", ErrInvalidArguments, SkeletonCommand, len(raw))
	}

	strs := make([]string, 3)
	for i := range strs {
		s, ok := raw[i].(string)
		if !ok || s == "" {
			return args, fmt.Errorf("%w: argument %d must be a non-empty string", ErrInvalidArguments, i+1)
		}
		strs[i] = s
	}
	args.uri, args.name, args.entity = strs[0], strs[1], strs[2]

	if len(raw) > 3 {
		b, ok := raw[3].(bool)
		if !ok {
			return args, fmt.Errorf("%w: includeBodies must be a boolean", ErrInvalidArguments)
		}
		args.includeBodies = b
	}
	if len(raw) > 4 {
		s, ok := raw[4].(string)
		if !ok {
			return args, fmt.Errorf("%w: target must be a string", ErrInvalidArguments)
		}
		args.target = s
	}
	return args, nil
}

// siblingURI names a document `<entity><ext>` in the directory of uri.
func siblingURI(uri protocol.DocumentUri, entity string) protocol.DocumentUri {
	if strings.HasPrefix(uri, "file://") {
		if u, err := url.Parse(uri); err == nil {
			u.Path = path.Join(path.Dir(u.Path), entity+path.Ext(u.Path))
			return u.String()
		}
	}
	return path.Join(path.Dir(uri), entity+path.Ext(uri))
}
