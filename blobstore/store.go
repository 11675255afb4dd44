package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for fetching immutable reference blobs.
type Store interface {
	// Fetch reads the blob with the given name in full.
	Fetch(ctx context.Context, name string) ([]byte, error)
}
