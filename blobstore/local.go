package blobstore

import (
	"context"
	"path/filepath"

	"github.com/hupe1980/sharky/internal/mmap"
)

// LocalStore opens files from the local file system as memory-mapped blobs.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at root. An empty root leaves
// names as given, so absolute and working-directory paths both work.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open maps the named file read-only.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	path := name
	if s.root != "" {
		path = filepath.Join(s.root, name)
	}
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	return &mappedBlob{bytesBlob: bytesBlob{data: m.Bytes(), release: m.Close}, m: m}, nil
}

// mappedBlob is a bytesBlob over a file mapping that accepts access hints.
type mappedBlob struct {
	bytesBlob
	m *mmap.Mapping
}

func (b *mappedBlob) AdviseSequential() error {
	return b.m.Advise(mmap.AccessSequential)
}

func (b *mappedBlob) AdviseRandom() error {
	return b.m.Advise(mmap.AccessRandom)
}
