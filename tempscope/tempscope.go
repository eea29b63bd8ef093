// Package tempscope provides scoped temp-file acquisition shared by the
// audio and video pipelines: a file is created, handed to a callback by
// path, and removed on every exit path including a panic recovered
// upstream by the router's Recovery middleware.
package tempscope

import (
	"fmt"
	"os"
)

// WithTempFile creates a temp file matching pattern (same glob rules as
// os.CreateTemp), closes it immediately so fn can reopen it by path, runs
// fn, and removes the file once fn returns or panics.
func WithTempFile(pattern string, fn func(path string) error) error {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return fmt.Errorf("tempscope: create %s: %w", pattern, err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("tempscope: close %s: %w", path, err)
	}
	defer os.Remove(path)
	return fn(path)
}

// WithTempDir creates a temp directory matching pattern, runs fn with its
// path, and removes the directory (recursively) once fn returns or panics.
func WithTempDir(pattern string, fn func(dir string) error) error {
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return fmt.Errorf("tempscope: mkdir %s: %w", pattern, err)
	}
	defer os.RemoveAll(dir)
	return fn(dir)
}
