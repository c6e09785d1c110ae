// Package parsers adapts tree-sitter grammars to the raw extraction model.
// Each language parser walks top-level statements only and reports byte
// offsets for every declaration it produces.
package parsers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mvp-joe/project-outline/internal/extraction"
	"github.com/mvp-joe/project-outline/internal/outline"
)

// ErrUnsupportedLanguage is returned when no parser handles a file's extension.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Parser turns source text of one language into a raw unit.
type Parser interface {
	Language() string
	Extensions() []string
	Parse(ctx context.Context, source []byte) (*extraction.Unit, error)
}

// registry maps lowercase extensions to parsers.
var registry = func() map[string]Parser {
	m := make(map[string]Parser)
	for _, p := range []Parser{NewTypeScriptParser(), NewTSXParser(), NewPhpParser()} {
		for _, ext := range p.Extensions() {
			m[ext] = p
		}
	}
	return m
}()

// ForPath returns the parser for a file path or URI based on its extension.
func ForPath(path string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(stripURI(path)))
	p, ok := registry[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedLanguage, ext, strings.Join(Extensions(), ", "))
	}
	return p, nil
}

// Supported reports whether any parser handles path.
func Supported(path string) bool {
	_, ok := registry[strings.ToLower(filepath.Ext(stripURI(path)))]
	return ok
}

// Extensions returns every registered extension, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Resolver adapts ForPath to the outline extractor.
func Resolver(uri string) (outline.Parser, error) {
	return ForPath(uri)
}

// stripURI turns a file:// URI into a path and leaves plain paths alone.
func stripURI(s string) string {
	if !strings.HasPrefix(s, "file://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return strings.TrimPrefix(s, "file://")
	}
	return u.Path
}
