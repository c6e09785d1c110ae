package watcher

// Test Plan for FileDiscovery:
// - code patterns select files, including files at the root for **/ patterns
// - ignore patterns exclude files and whole directories
// - the .outline directory is always ignored
// - Matches works with absolute and relative paths and rejects paths outside the root
// - invalid patterns fail construction

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDiscovery_DiscoverFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, rel := range []string{
		"index.ts",
		"src/app.ts",
		"src/view.tsx",
		"src/legacy.php",
		"src/notes.md",
		"node_modules/pkg/index.ts",
		"dist/bundle.ts",
		".outline/cache.ts",
	} {
		writeFile(t, filepath.Join(root, rel), "x")
	}

	fd, err := NewFileDiscovery(root, []string{"**/*.ts", "**/*.tsx", "**/*.php"}, []string{"node_modules/**", "dist/**"})
	require.NoError(t, err)

	files, err := fd.DiscoverFiles()
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "index.ts"),
		filepath.Join(root, "src", "app.ts"),
		filepath.Join(root, "src", "legacy.php"),
		filepath.Join(root, "src", "view.tsx"),
	}, files)
}

func TestFileDiscovery_Matches(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fd, err := NewFileDiscovery(root, []string{"**/*.ts"}, []string{"vendor/**", "**/*.d.ts"})
	require.NoError(t, err)

	assert.True(t, fd.Matches(filepath.Join(root, "a.ts")))
	assert.True(t, fd.Matches(filepath.Join(root, "deep", "b.ts")))
	assert.False(t, fd.Matches(filepath.Join(root, "types.d.ts")))
	assert.False(t, fd.Matches(filepath.Join(root, "vendor", "c.ts")))
	assert.False(t, fd.Matches(filepath.Join(root, "a.js")))
	assert.False(t, fd.Matches(filepath.Join(filepath.Dir(root), "outside.ts")))

	assert.True(t, fd.IgnoresDir(filepath.Join(root, "vendor")))
	assert.True(t, fd.IgnoresDir(filepath.Join(root, ".outline")))
	assert.False(t, fd.IgnoresDir(root))
}

func TestFileDiscovery_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewFileDiscovery(t.TempDir(), []string{"[a-"}, nil)
	assert.Error(t, err)
}
