package imports

// Test Plan for import graph:
// - relative specifiers resolve to known files with extension and index fallbacks
// - bare and namespace specifiers stay external
// - dependencies and dependents are reported per file
// - Order lists dependencies before importers
// - cycles are detected and Order fails with ErrCycle
// - unknown files fail with ErrUnknownFile
// - trees parsed from real sources feed the graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/project-outline/internal/outline"
	"github.com/mvp-joe/project-outline/internal/parsers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treeImporting(modules ...string) *outline.Tree {
	tree := &outline.Tree{}
	for _, m := range modules {
		tree.Imports = append(tree.Imports, &outline.ImportToken{Name: m, Module: m})
	}
	return tree
}

func p(parts ...string) string {
	return filepath.Join(append([]string{"/src"}, parts...)...)
}

func TestRelativeResolver(t *testing.T) {
	t.Parallel()

	known := map[string]bool{
		p("models.ts"):           true,
		p("lib", "index.ts"):     true,
		p("util", "strings.tsx"): true,
	}
	resolve := RelativeResolver(func(path string) bool { return known[path] })

	got, ok := resolve(p("app.ts"), "./models")
	require.True(t, ok)
	assert.Equal(t, p("models.ts"), got)

	got, ok = resolve(p("app.ts"), "./lib")
	require.True(t, ok)
	assert.Equal(t, p("lib", "index.ts"), got)

	got, ok = resolve(p("lib", "index.ts"), "../util/strings")
	require.True(t, ok)
	assert.Equal(t, p("util", "strings.tsx"), got)

	_, ok = resolve(p("app.ts"), "react")
	assert.False(t, ok)
	_, ok = resolve(p("app.ts"), "./missing")
	assert.False(t, ok)
}

func TestBuild_DependenciesAndOrder(t *testing.T) {
	t.Parallel()

	g, err := Build(map[string]*outline.Tree{
		p("app.ts"):     treeImporting("./service", "./models", "react"),
		p("service.ts"): treeImporting("./models", "path"),
		p("models.ts"):  treeImporting(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{p("app.ts"), p("models.ts"), p("service.ts")}, g.Files())

	deps, err := g.Dependencies(p("app.ts"))
	require.NoError(t, err)
	assert.Equal(t, []string{p("models.ts"), p("service.ts")}, deps)

	dependents, err := g.Dependents(p("models.ts"))
	require.NoError(t, err)
	assert.Equal(t, []string{p("app.ts"), p("service.ts")}, dependents)

	assert.Equal(t, []string{"react"}, g.External(p("app.ts")))
	assert.Equal(t, []string{"path"}, g.External(p("service.ts")))
	assert.Empty(t, g.External(p("models.ts")))

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{p("models.ts"), p("service.ts"), p("app.ts")}, order)

	cycles, err := g.Cycles()
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestBuild_Cycles(t *testing.T) {
	t.Parallel()

	g, err := Build(map[string]*outline.Tree{
		p("a.ts"): treeImporting("./b"),
		p("b.ts"): treeImporting("./a", "./c"),
		p("c.ts"): treeImporting("./c"),
	})
	require.NoError(t, err)

	cycles, err := g.Cycles()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{p("a.ts"), p("b.ts")}}, cycles)

	_, err = g.Order()
	assert.ErrorIs(t, err, ErrCycle)
}

func TestGraph_UnknownFile(t *testing.T) {
	t.Parallel()

	g := New()
	_, err := g.Dependencies("nope.ts")
	assert.ErrorIs(t, err, ErrUnknownFile)
	_, err = g.Dependents("nope.ts")
	assert.ErrorIs(t, err, ErrUnknownFile)
}

func TestGraph_DuplicateImportsCollapse(t *testing.T) {
	t.Parallel()

	g := New()
	resolve := func(_, module string) (string, bool) { return module, module == "b.ts" }
	require.NoError(t, g.Add("a.ts", treeImporting("b.ts", "b.ts", "ext", "ext"), resolve))
	require.NoError(t, g.Add("a.ts", nil, resolve))

	deps, err := g.Dependencies("a.ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.ts"}, deps)
	assert.Equal(t, []string{"ext"}, g.External("a.ts"))
}

func TestBuild_FromParsedSources(t *testing.T) {
	t.Parallel()

	sources := map[string]string{
		p("main.ts"):    "import { User } from \"./user\";\nimport * as fs from \"fs\";\n",
		p("user.ts"):    "export class User {}\n",
		p("legacy.php"): "<?php\nuse App\\Model\\User;\n",
	}

	trees := make(map[string]*outline.Tree)
	for file, src := range sources {
		parser, err := parsers.ForPath(file)
		require.NoError(t, err)
		tree, err := outline.Extract(context.Background(), parser, src, outline.DefaultOptions())
		require.NoError(t, err)
		trees[file] = tree
	}

	g, err := Build(trees)
	require.NoError(t, err)

	deps, err := g.Dependencies(p("main.ts"))
	require.NoError(t, err)
	assert.Equal(t, []string{p("user.ts")}, deps)
	assert.Equal(t, []string{"fs"}, g.External(p("main.ts")))
	assert.Equal(t, []string{`App\Model\User`}, g.External(p("legacy.php")))
}

func TestRelative(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a.ts", "lib/b.ts"}, Relative("/src", []string{"/src/a.ts", "/src/lib/b.ts"}))
}
