package watcher

// Test Plan for Coordinator:
// - changed files are read and refreshed with the current options
// - removed files are forgotten and reported as removed
// - unreadable files report an error without refreshing
// - SetOptions pauses the watcher and re-extracts every tracked file
// - Start wires the watcher callback and stops the watcher on cancel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mvp-joe/project-outline/internal/extraction"
	"github.com/mvp-joe/project-outline/internal/outline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubParser turns the whole source into one constant declaration.
type stubParser struct{}

func (stubParser) Parse(_ context.Context, source []byte) (*extraction.Unit, error) {
	if string(source) == "broken" {
		return nil, errors.New("syntax error")
	}
	return &extraction.Unit{Declarations: []extraction.Declaration{
		&extraction.Variable{Node: extraction.Node{Name: string(source)}, Const: true},
	}}, nil
}

// fakeWatcher records lifecycle calls and exposes the callback.
type fakeWatcher struct {
	mu       sync.Mutex
	callback func([]string)
	pauses   int
	resumes  int
	stopped  bool
	started  chan struct{}
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{started: make(chan struct{})}
}

func (f *fakeWatcher) Start(_ context.Context, cb func([]string)) error {
	f.mu.Lock()
	f.callback = cb
	f.mu.Unlock()
	close(f.started)
	return nil
}

func (f *fakeWatcher) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeWatcher) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
}

func (f *fakeWatcher) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes++
}

type updates struct {
	mu   sync.Mutex
	list []Update
}

func (u *updates) add(up Update) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.list = append(u.list, up)
}

func (u *updates) all() []Update {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]Update(nil), u.list...)
}

func newTestCoordinator(t *testing.T, fw FileWatcher) (*Coordinator, *outline.Extractor, *updates) {
	t.Helper()
	ex, err := outline.NewExtractor(func(string) (outline.Parser, error) { return stubParser{}, nil }, 16)
	require.NoError(t, err)
	t.Cleanup(ex.Close)

	got := &updates{}
	return NewCoordinator(fw, ex, outline.DefaultOptions(), got.add), ex, got
}

func TestCoordinator_HandleFileChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	good := filepath.Join(root, "good.ts")
	broken := filepath.Join(root, "broken.ts")
	writeFile(t, good, "LIMIT")
	writeFile(t, broken, "broken")

	c, ex, got := newTestCoordinator(t, newFakeWatcher())
	c.HandleFileChange(context.Background(), []string{good, broken})

	list := got.all()
	require.Len(t, list, 2)
	assert.Equal(t, good, list[0].Path)
	require.NoError(t, list[0].Err)
	require.Len(t, list[0].Tree.Variables, 1)
	assert.Equal(t, "@LIMIT", list[0].Tree.Variables[0].Name)

	assert.Equal(t, broken, list[1].Path)
	assert.Error(t, list[1].Err)

	_, ok := ex.Latest(good)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Tracked())
}

func TestCoordinator_RemovedFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "gone.ts")
	writeFile(t, file, "X")

	c, ex, got := newTestCoordinator(t, newFakeWatcher())
	c.Prime(context.Background(), []string{file})
	_, ok := ex.Latest(file)
	require.True(t, ok)

	require.NoError(t, os.Remove(file))
	c.HandleFileChange(context.Background(), []string{file})

	list := got.all()
	require.Len(t, list, 2)
	assert.True(t, list[1].Removed)
	assert.Nil(t, list[1].Tree)
	_, ok = ex.Latest(file)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Tracked())
}

func TestCoordinator_UnreadableFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, _, got := newTestCoordinator(t, newFakeWatcher())
	c.HandleFileChange(context.Background(), []string{dir})

	list := got.all()
	require.Len(t, list, 1)
	assert.Error(t, list[0].Err)
	assert.False(t, list[0].Removed)
	assert.Equal(t, 0, c.Tracked())
}

func TestCoordinator_SetOptions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "a.ts")
	writeFile(t, file, "MAX")

	fw := newFakeWatcher()
	c, ex, _ := newTestCoordinator(t, fw)
	c.Prime(context.Background(), []string{file})

	c.SetOptions(context.Background(), outline.Options{ReadonlyMarker: "#", Indent: "  "})

	tree, ok := ex.Latest(file)
	require.True(t, ok)
	assert.Equal(t, "#MAX", tree.Variables[0].Name)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	assert.Equal(t, 1, fw.pauses)
	assert.Equal(t, 1, fw.resumes)
}

func TestCoordinator_Start(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "a.ts")
	writeFile(t, file, "A")

	fw := newFakeWatcher()
	c, _, got := newTestCoordinator(t, fw)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-fw.started:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher not started")
	}

	fw.mu.Lock()
	cb := fw.callback
	fw.mu.Unlock()
	cb([]string{file})
	require.Len(t, got.all(), 1)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not stop")
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	assert.True(t, fw.stopped)
}
