package source

import (
	"context"
	"errors"
	"os"
)

// File reads a document from a local file on every fetch.
type File struct {
	Path string
}

// String describes the source for diagnostics.
func (f *File) String() string { return f.Path }

// Validate checks that a path was given.
func (f *File) Validate() error {
	if f.Path == "" {
		return errors.New("file path must not be empty")
	}

	return nil
}

// Fetch reads the whole file.
func (f *File) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetchError(f, err)
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fetchError(f, err)
	}

	return data, nil
}
