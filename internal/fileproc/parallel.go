// Package fileproc measures many files concurrently.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"
)

// FileError is a failure to measure one file.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e FileError) Unwrap() error { return e.Err }

// FileErrors lists the files that could not be measured, sorted by path.
// It is not safe for concurrent use.
type FileErrors struct {
	Errors []FileError
}

func (e *FileErrors) Add(path string, err error) {
	e.Errors = append(e.Errors, FileError{Path: path, Err: err})
}

func (e *FileErrors) Len() int { return len(e.Errors) }

func (e *FileErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
	}
}

// Unwrap exposes each file's error to errors.Is and errors.As.
func (e *FileErrors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i := range e.Errors {
		out[i] = e.Errors[i]
	}
	return out
}

// ProgressFunc is called once per file, whether or not it succeeded.
type ProgressFunc func()

// Result is the value measured for one file.
type Result[T any] struct {
	Path  string
	Value T
}

// ForEachFile applies fn to every file on up to maxWorkers goroutines
// (twice the CPU count when maxWorkers <= 0) and returns the successes
// sorted by path. A failing file does not stop the others; it is listed in
// the returned FileErrors, which is nil when all files succeeded. After ctx
// is cancelled the remaining files are not opened and fail with ctx.Err().
func ForEachFile[T any](ctx context.Context, files []string, maxWorkers int, fn func(string) (T, error), onProgress ProgressFunc) ([]Result[T], *FileErrors) {
	if len(files) == 0 {
		return nil, nil
	}
	if maxWorkers <= 0 {
		maxWorkers = 2 * runtime.NumCPU()
	}

	// Each worker owns one slot, so no locking is needed around results.
	values := make([]T, len(files))
	failures := make([]error, len(files))

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if onProgress != nil {
				defer onProgress()
			}
			if err := ctx.Err(); err != nil {
				failures[i] = err
				return err
			}
			values[i], failures[i] = fn(path)
			return nil
		})
	}
	_ = p.Wait()

	var results []Result[T]
	errs := &FileErrors{}
	for i, path := range files {
		if failures[i] != nil {
			errs.Add(path, failures[i])
			continue
		}
		results = append(results, Result[T]{Path: path, Value: values[i]})
	}
	sort.Slice(results, func(a, b int) bool { return results[a].Path < results[b].Path })
	sort.Slice(errs.Errors, func(a, b int) bool { return errs.Errors[a].Path < errs.Errors[b].Path })

	if errs.Len() == 0 {
		return results, nil
	}
	return results, errs
}
