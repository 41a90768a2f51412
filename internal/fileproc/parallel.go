// Package fileproc provides concurrent processing of corpus files.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/repolens/repolens/pkg/parser"
	"github.com/repolens/repolens/pkg/source"
	"github.com/sourcegraph/conc/pool"
)

// FileError is an error that occurred while processing one file.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Errors collects per-file processing errors. Safe for concurrent use.
type Errors struct {
	mu     sync.Mutex
	Errors []FileError
}

// Add appends an error to the collection.
func (e *Errors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, FileError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *Errors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *Errors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is applied to NumCPU for worker count. 2x works
// well for the mixed CGO and pure-Go workload of parse plus metrics.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func(path string)

// MapFiles processes corpus files in parallel, each task owning a dedicated
// parser. Results are returned in arbitrary order; per-file errors are
// collected rather than aborting the run. A canceled context stops issuing
// work and records the context error for the unprocessed files.
func MapFiles[T any](ctx context.Context, files []*source.File, fn func(*parser.Parser, *source.File) (T, error), onProgress ProgressFunc) ([]T, *Errors) {
	if len(files) == 0 {
		return nil, nil
	}

	maxWorkers := runtime.NumCPU() * DefaultWorkerMultiplier
	results := make([]T, 0, len(files))
	errs := &Errors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for _, f := range files {
		f := f
		p.Go(func() {
			select {
			case <-ctx.Done():
				errs.Add(f.Path, ctx.Err())
				return
			default:
			}

			psr := parser.New()
			defer psr.Close()

			result, err := fn(psr, f)
			if onProgress != nil {
				onProgress(f.Path)
			}
			if err != nil {
				errs.Add(f.Path, err)
				return
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
