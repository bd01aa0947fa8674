// Package source provides the data sources polled by jsonwatch: an external
// command, an HTTP URL, or a local file.
package source

import (
	"context"
	"fmt"
)

// Source produces one raw document per call.
type Source interface {
	// Fetch returns the current document. It must honour ctx cancellation.
	Fetch(ctx context.Context) ([]byte, error)

	// String describes the source for diagnostics.
	String() string
}

// FetchError wraps any failure to obtain a document from a source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func fetchError(src Source, err error) error {
	return &FetchError{Source: src.String(), Err: err}
}
