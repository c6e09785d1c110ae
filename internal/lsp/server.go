// Package lsp serves outlines over the Language Server Protocol: document
// symbols for open files and an outline.skeleton command that generates stub
// declarations.
package lsp

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mvp-joe/project-outline/internal/config"
	"github.com/mvp-joe/project-outline/internal/outline"
	"github.com/mvp-joe/project-outline/internal/parsers"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const lsName = "outline"

// requestTimeout bounds how long a request waits for a pending extraction.
const requestTimeout = 10 * time.Second

var log = commonlog.GetLogger("outline.lsp")

// Server is an outline language server.
type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string

	ex         *outline.Extractor
	loaderOpts []config.LoaderOption

	mu   sync.Mutex
	cfg  *config.Config
	docs map[protocol.DocumentUri]string
}

// NewServer creates a language server. cfg is replaced by the project
// configuration when the client reports a root on initialize; loaderOpts
// apply to that load.
func NewServer(cfg *config.Config, version string, loaderOpts ...config.LoaderOption) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	ex, err := outline.NewExtractor(parsers.Resolver, cfg.Cache.MaxUnits)
	if err != nil {
		return nil, err
	}

	ls := &Server{
		version:    version,
		ex:         ex,
		loaderOpts: loaderOpts,
		cfg:        cfg,
		docs:       make(map[protocol.DocumentUri]string),
	}

	ls.handler = protocol.Handler{
		Initialize:                      ls.initialize,
		Initialized:                     ls.initialized,
		Shutdown:                        ls.shutdown,
		SetTrace:                        ls.setTrace,
		TextDocumentDidOpen:             ls.textDocumentDidOpen,
		TextDocumentDidChange:           ls.textDocumentDidChange,
		TextDocumentDidClose:            ls.textDocumentDidClose,
		TextDocumentDidSave:             ls.textDocumentDidSave,
		TextDocumentDocumentSymbol:      ls.textDocumentDocumentSymbol,
		WorkspaceExecuteCommand:         ls.workspaceExecuteCommand,
		WorkspaceDidChangeConfiguration: ls.workspaceDidChangeConfiguration,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls, nil
}

// RunStdio serves on stdin/stdout until the client disconnects.
func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

// Close waits for in-flight extractions.
func (ls *Server) Close() {
	ls.ex.Close()
}

func (ls *Server) options() outline.Options {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.cfg.Options()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := ""
	if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	} else if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	}

	if rootDir != "" {
		cfg, err := config.LoadConfigFromDir(rootDir, ls.loaderOpts...)
		if err != nil {
			log.Warningf("using current configuration, failed to load %s: %s", rootDir, err.Error())
		} else {
			ls.mu.Lock()
			ls.cfg = cfg
			ls.mu.Unlock()
		}
	}

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{SkeletonCommand},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if len(params.ContentChanges) == 0 || !parsers.Supported(uri) {
		return nil
	}

	ls.mu.Lock()
	text := ls.docs[uri]
	ls.mu.Unlock()

	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			text = applyChange(text, c)
		}
	}
	ls.update(uri, text)
	return nil
}

// applyChange replaces the changed range of text. A change without a range
// replaces the whole text.
func applyChange(text string, change protocol.TextDocumentContentChangeEvent) string {
	if change.Range == nil {
		return change.Text
	}
	doc := outline.NewDocument(text)
	start := doc.OffsetAt(fromPosition(change.Range.Start))
	end := doc.OffsetAt(fromPosition(change.Range.End))
	if end < start {
		start, end = end, start
	}
	return text[:start] + change.Text + text[end:]
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(params.TextDocument.URI, *params.Text)
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.docs, params.TextDocument.URI)
	ls.mu.Unlock()

	ls.ex.Forget(params.TextDocument.URI)
	return nil
}

// update records the document text and requests a new extraction when the
// language is supported.
func (ls *Server) update(uri protocol.DocumentUri, text string) {
	if !parsers.Supported(uri) {
		log.Debugf("ignoring unsupported document %s", uri)
		return
	}

	ls.mu.Lock()
	ls.docs[uri] = text
	opts := ls.cfg.Options()
	ls.mu.Unlock()

	ls.ex.Refresh(context.Background(), uri, text, opts)
}

func (ls *Server) workspaceDidChangeConfiguration(ctx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	settings, ok := params.Settings.(map[string]any)
	if !ok {
		return nil
	}
	// Clients usually nest server settings under the server name.
	if nested, ok := settings[lsName].(map[string]any); ok {
		settings = nested
	}

	ls.mu.Lock()
	cfg, err := config.Apply(ls.cfg, settings)
	if err != nil {
		ls.mu.Unlock()
		log.Warningf("ignoring configuration change: %s", err.Error())
		return nil
	}
	ls.cfg = cfg
	opts := cfg.Options()
	docs := make(map[protocol.DocumentUri]string, len(ls.docs))
	for uri, text := range ls.docs {
		docs[uri] = text
	}
	ls.mu.Unlock()

	log.Infof("configuration changed, re-extracting %d documents", len(docs))
	for uri, text := range docs {
		ls.ex.Refresh(context.Background(), uri, text, opts)
	}
	return nil
}

// tree waits for the latest extraction of uri.
func (ls *Server) tree(uri protocol.DocumentUri) (*outline.Tree, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return ls.ex.Current(ctx, uri)
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
