// Package imports builds a dependency graph across outlined source files from
// their import tokens.
package imports

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/mvp-joe/project-outline/internal/outline"
)

// ErrCycle is returned by Order when files import each other.
var ErrCycle = errors.New("import cycle")

// ErrUnknownFile is returned when a query names a file that was never added.
var ErrUnknownFile = errors.New("unknown file")

// Resolver maps a module specifier imported by from to a known file.
type Resolver func(from, module string) (string, bool)

// candidateSuffixes are tried in order when resolving a relative specifier.
var candidateSuffixes = []string{
	"", ".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs", ".php",
	"/index.ts", "/index.tsx", "/index.js",
}

// RelativeResolver resolves "./" and "../" specifiers against the importing
// file's directory, trying the usual source extensions and index files.
func RelativeResolver(known func(path string) bool) Resolver {
	return func(from, module string) (string, bool) {
		if !strings.HasPrefix(module, "./") && !strings.HasPrefix(module, "../") {
			return "", false
		}
		base := filepath.Join(filepath.Dir(from), filepath.FromSlash(module))
		for _, suffix := range candidateSuffixes {
			candidate := base + filepath.FromSlash(suffix)
			if known(candidate) {
				return candidate, true
			}
		}
		return "", false
	}
}

// Graph is a directed import graph. An edge A -> B means A imports B.
type Graph struct {
	g        graph.Graph[string, string]
	external map[string][]string
}

// New creates an empty import graph.
func New() *Graph {
	return &Graph{
		g:        graph.New(graph.StringHash, graph.Directed()),
		external: make(map[string][]string),
	}
}

// Build creates a graph from outlined files, resolving relative imports
// between them.
func Build(trees map[string]*outline.Tree) (*Graph, error) {
	g := New()
	for file := range trees {
		if err := g.addFile(file); err != nil {
			return nil, err
		}
	}

	resolve := RelativeResolver(func(p string) bool {
		_, ok := trees[p]
		return ok
	})

	files := make([]string, 0, len(trees))
	for file := range trees {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		if err := g.Add(file, trees[file], resolve); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Add records file and the imports of its tree. Imports the resolver cannot
// map to a file are kept as external modules.
func (g *Graph) Add(file string, tree *outline.Tree, resolve Resolver) error {
	if err := g.addFile(file); err != nil {
		return err
	}
	if tree == nil {
		return nil
	}

	for _, imp := range tree.Imports {
		module := imp.Module
		if module == "" {
			continue
		}

		target, ok := resolve(file, module)
		if !ok {
			g.external[file] = appendUnique(g.external[file], module)
			continue
		}
		if target == file {
			continue
		}
		if err := g.addFile(target); err != nil {
			return err
		}
		if err := g.g.AddEdge(file, target); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return fmt.Errorf("failed to add import %s -> %s: %w", file, target, err)
		}
	}
	return nil
}

func (g *Graph) addFile(file string) error {
	if err := g.g.AddVertex(file); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to add file %s: %w", file, err)
	}
	return nil
}

// Files returns every file in the graph, sorted.
func (g *Graph) Files() []string {
	adj, err := g.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	files := make([]string, 0, len(adj))
	for file := range adj {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Dependencies returns the files file imports directly, sorted.
func (g *Graph) Dependencies(file string) ([]string, error) {
	adj, err := g.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	edges, ok := adj[file]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFile, file)
	}
	return sortedKeys(edges), nil
}

// Dependents returns the files that import file directly, sorted.
func (g *Graph) Dependents(file string) ([]string, error) {
	pred, err := g.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	edges, ok := pred[file]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFile, file)
	}
	return sortedKeys(edges), nil
}

// External returns the module specifiers file imports that are not files in
// the graph, in import order.
func (g *Graph) External(file string) []string {
	return g.external[file]
}

// Order returns every file with its dependencies before it. Ties are broken
// lexically. Fails with ErrCycle when the graph is cyclic.
func (g *Graph) Order() ([]string, error) {
	if cycles, err := g.Cycles(); err != nil {
		return nil, err
	} else if len(cycles) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycles[0], " -> "))
	}

	// Sorting the importer-first order in reverse yields dependencies first.
	order, err := graph.StableTopologicalSort(g.g, func(a, b string) bool { return a > b })
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// Cycles returns each group of mutually importing files, members sorted and
// groups ordered by their first member.
func (g *Graph) Cycles() ([][]string, error) {
	components, err := graph.StronglyConnectedComponents(g.g)
	if err != nil {
		return nil, err
	}

	var cycles [][]string
	for _, c := range components {
		if len(c) < 2 {
			continue
		}
		sort.Strings(c)
		cycles = append(cycles, c)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles, nil
}

// Relative rewrites absolute file names relative to root for display.
func Relative(root string, files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		if rel, err := filepath.Rel(root, f); err == nil {
			out[i] = path.Clean(filepath.ToSlash(rel))
		} else {
			out[i] = f
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
