package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/mvp-joe/project-outline/internal/outline"
)

// Coordinator routes debounced file changes to the outline extractor and
// reports each re-extraction.
type Coordinator struct {
	files    FileWatcher
	ex       Refresher
	onUpdate func(Update)

	mu      sync.Mutex
	opts    outline.Options
	tracked map[string]bool
}

// NewCoordinator creates a new watch coordinator. onUpdate may be nil.
func NewCoordinator(files FileWatcher, ex Refresher, opts outline.Options, onUpdate func(Update)) *Coordinator {
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}
	return &Coordinator{
		files:    files,
		ex:       ex,
		onUpdate: onUpdate,
		opts:     opts,
		tracked:  make(map[string]bool),
	}
}

// Prime extracts the initial set of files before watching starts.
func (c *Coordinator) Prime(ctx context.Context, paths []string) {
	c.HandleFileChange(ctx, paths)
}

// Start begins routing file changes. Blocks until ctx is cancelled.
func (c *Coordinator) Start(ctx context.Context) error {
	if err := c.files.Start(ctx, func(files []string) {
		c.HandleFileChange(ctx, files)
	}); err != nil {
		return err
	}

	<-ctx.Done()
	if err := c.files.Stop(); err != nil {
		log.Warningf("file watcher stop failed: %v", err)
	}
	return ctx.Err()
}

// SetOptions swaps the outline options and re-extracts every tracked file.
// File events arriving meanwhile are held until the re-extraction is done.
func (c *Coordinator) SetOptions(ctx context.Context, opts outline.Options) {
	c.files.Pause()
	defer c.files.Resume()

	c.mu.Lock()
	c.opts = opts
	paths := make([]string, 0, len(c.tracked))
	for path := range c.tracked {
		paths = append(paths, path)
	}
	c.mu.Unlock()

	c.HandleFileChange(ctx, paths)
}

// Tracked returns the number of files currently outlined.
func (c *Coordinator) Tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracked)
}

// HandleFileChange re-extracts changed files and forgets removed ones.
func (c *Coordinator) HandleFileChange(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}

	log.Infof("processing %d file change(s)", len(files))

	c.mu.Lock()
	opts := c.opts
	c.mu.Unlock()

	pending := make([]*outline.Pending, len(files))
	for i, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				c.ex.Forget(path)
				c.untrack(path)
				c.onUpdate(Update{Path: path, Removed: true})
				continue
			}
			c.onUpdate(Update{Path: path, Err: err})
			continue
		}
		c.track(path)
		pending[i] = c.ex.Refresh(ctx, path, string(source), opts)
	}

	for i, p := range pending {
		if p == nil {
			continue
		}
		tree, err := p.Wait(ctx)
		if err != nil {
			log.Errorf("outline of %s failed: %v", files[i], err)
		}
		c.onUpdate(Update{Path: files[i], Tree: tree, Err: err})
	}
}

func (c *Coordinator) track(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracked[path] = true
}

func (c *Coordinator) untrack(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tracked, path)
}
