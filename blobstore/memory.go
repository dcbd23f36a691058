package blobstore

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore keeps blobs in memory. It is safe for concurrent use.
type MemoryStore struct {
	blobs sync.Map // name -> []byte, never mutated after Put
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Put stores a copy of data under name, replacing any previous blob. Blobs
// already open keep the old contents.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.blobs.Store(name, bytes.Clone(data))
	return nil
}

// Delete removes name. Deleting a missing blob is not an error.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.blobs.Delete(name)
	return nil
}

// Open implements BlobStore.
func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	v, ok := m.blobs.Load(name)
	if !ok {
		return nil, ErrNotFound
	}
	return &bytesBlob{data: v.([]byte)}, nil
}

// bytesBlob serves a blob from a byte slice. release, if set, runs once on
// Close and invalidates data.
type bytesBlob struct {
	data    []byte
	closed  bool
	release func() error
}

func (b *bytesBlob) Size() int64 {
	return int64(len(b.data))
}

func (b *bytesBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if b.closed {
		return nil, ErrClosed
	}
	end, err := clampRange(off, length, int64(len(b.data)))
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b.data[off:end])), nil
}

func (b *bytesBlob) Bytes() ([]byte, error) {
	if b.closed {
		return nil, ErrClosed
	}
	return b.data, nil
}

func (b *bytesBlob) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if b.release != nil {
		return b.release()
	}
	return nil
}
