package watcher

import (
	"context"

	"github.com/mvp-joe/project-outline/internal/outline"
)

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Refresher is the part of the outline extractor the coordinator drives.
type Refresher interface {
	Refresh(ctx context.Context, uri string, text string, opts outline.Options) *outline.Pending
	Forget(uri string)
}

// Update reports the outcome of re-extracting one file.
type Update struct {
	Path    string
	Tree    *outline.Tree
	Err     error
	Removed bool
}
