package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher creates watcher successfully with a valid root
// - NewFileWatcher returns error with invalid root
// - Single file change fires callback after debounce
// - Multiple file changes are batched into one sorted callback
// - Debouncing coalesces rapid changes of one file
// - Pause/Resume accumulates during pause and fires on resume
// - Deleted files are reported
// - New directories are watched recursively
// - Pattern filtering ignores non-source files and ignored directories
// - Stop() is idempotent and safe before Start()

const testDebounce = 100 * time.Millisecond

func newTestWatcher(t *testing.T, root string) FileWatcher {
	t.Helper()
	discovery, err := NewFileDiscovery(root, []string{"**/*.ts", "**/*.php"}, []string{"node_modules/**"})
	require.NoError(t, err)
	w, err := NewFileWatcher(discovery, testDebounce)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

// collector records callback batches.
type collector struct {
	mu      sync.Mutex
	batches [][]string
	ch      chan struct{}
}

func newCollector() *collector {
	return &collector{ch: make(chan struct{}, 16)}
}

func (c *collector) callback(files []string) {
	c.mu.Lock()
	c.batches = append(c.batches, files)
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *collector) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(3 * time.Second):
		t.Fatal("callback not called after timeout")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches[len(c.batches)-1]
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewFileWatcher_Success(t *testing.T) {
	t.Parallel()

	w := newTestWatcher(t, t.TempDir())
	require.NotNil(t, w)
}

func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	discovery, err := NewFileDiscovery(filepath.Join(t.TempDir(), "missing"), []string{"**/*.ts"}, nil)
	require.NoError(t, err)

	w, err := NewFileWatcher(discovery, 0)
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newTestWatcher(t, root)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(root, "app.ts")
	writeFile(t, file, "export const a = 1;")

	assert.Equal(t, []string{file}, c.wait(t))
}

func TestFileWatcher_BatchesSorted(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newTestWatcher(t, root)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	b := filepath.Join(root, "b.ts")
	a := filepath.Join(root, "a.php")
	writeFile(t, b, "let b;")
	time.Sleep(20 * time.Millisecond)
	writeFile(t, a, "<?php")

	assert.Equal(t, []string{a, b}, c.wait(t))
}

func TestFileWatcher_Debouncing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newTestWatcher(t, root)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(root, "app.ts")
	for i := 0; i < 3; i++ {
		writeFile(t, file, "let v = "+string(rune('0'+i))+";")
		time.Sleep(20 * time.Millisecond)
	}

	assert.Equal(t, []string{file}, c.wait(t))
	time.Sleep(3 * testDebounce)
	assert.Equal(t, 1, c.count())
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newTestWatcher(t, root)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	w.Pause()
	file := filepath.Join(root, "paused.ts")
	writeFile(t, file, "let p;")
	time.Sleep(3 * testDebounce)
	assert.Equal(t, 0, c.count())

	w.Resume()
	assert.Equal(t, []string{file}, c.wait(t))
}

func TestFileWatcher_Delete(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "gone.ts")
	writeFile(t, file, "let g;")

	w := newTestWatcher(t, root)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.Remove(file))
	assert.Equal(t, []string{file}, c.wait(t))
}

func TestFileWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newTestWatcher(t, root)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	dir := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(dir, 0755))
	time.Sleep(2 * testDebounce)

	file := filepath.Join(dir, "nested.ts")
	writeFile(t, file, "let n;")
	assert.Contains(t, c.wait(t), file)
}

func TestFileWatcher_PatternFiltering(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "lib"), 0755))

	w := newTestWatcher(t, root)
	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	time.Sleep(50 * time.Millisecond)

	writeFile(t, filepath.Join(root, "README.md"), "# readme")
	writeFile(t, filepath.Join(root, "node_modules", "lib", "index.ts"), "let x;")
	time.Sleep(3 * testDebounce)
	assert.Equal(t, 0, c.count())

	file := filepath.Join(root, "main.ts")
	writeFile(t, file, "let m;")
	assert.Equal(t, []string{file}, c.wait(t))
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	discovery, err := NewFileDiscovery(t.TempDir(), []string{"**/*.ts"}, nil)
	require.NoError(t, err)

	w, err := NewFileWatcher(discovery, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.(*fileWatcher).debounceTime)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
