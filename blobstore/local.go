package blobstore

import (
	"context"
	"os"
	"path/filepath"
)

var _ Store = (*LocalStore)(nil)

// LocalStore implements Store using the local file system.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
// An empty root resolves names as given.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Fetch reads a blob in full.
func (s *LocalStore) Fetch(_ context.Context, name string) ([]byte, error) {
	path := name
	if s.root != "" {
		path = filepath.Join(s.root, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return data, nil
}
