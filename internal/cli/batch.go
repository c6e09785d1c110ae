package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/mvp-joe/project-outline/internal/outline"
)

// batchResult holds the outcome of outlining many files.
type batchResult struct {
	Trees  map[string]*outline.Tree
	Errors map[string]error
}

// outlineFiles reads and outlines files with up to GOMAXPROCS extractions in
// flight. Per-file failures are collected, not returned.
func outlineFiles(ctx context.Context, ex *outline.Extractor, files []string, opts outline.Options, progress *progressReporter) (*batchResult, error) {
	result := &batchResult{
		Trees:  make(map[string]*outline.Tree, len(files)),
		Errors: make(map[string]error),
	}

	var mu sync.Mutex
	record := func(file string, tree *outline.Tree, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Errors[file] = err
		} else {
			result.Trees[file] = tree
		}
		if progress != nil {
			progress.OnFileProcessed(file)
		}
	}

	work := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < runtime.GOMAXPROCS(0); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range work {
				data, err := os.ReadFile(file)
				if err != nil {
					record(file, nil, fmt.Errorf("failed to read file: %w", err))
					continue
				}
				tree, err := ex.Refresh(ctx, file, string(data), opts).Wait(ctx)
				record(file, tree, err)
			}
		}()
	}

	for _, file := range files {
		select {
		case work <- file:
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(work)
	wg.Wait()

	return result, nil
}
