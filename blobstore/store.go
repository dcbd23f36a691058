package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ErrClosed is returned when a closed blob is read.
var ErrClosed = errors.New("blobstore: blob is closed")

// BlobStore opens immutable blobs by name.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
	// ReadRange returns a reader for at most length bytes starting at off.
	// It returns io.EOF if off is at or past the end of the blob.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
}

// Mappable is an optional interface for Blobs that support memory mapping.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	// This is a zero-copy operation if supported.
	Bytes() ([]byte, error)
}

// Advisable is an optional interface for mapped Blobs that accept access
// pattern hints.
type Advisable interface {
	AdviseSequential() error
	AdviseRandom() error
}

// Downloader is an optional interface for Blobs that can fill a buffer
// directly, for example with parallel ranged requests.
type Downloader interface {
	// Download writes the whole blob into dst, which must hold at least
	// Size() bytes, and returns the number of bytes written.
	Download(ctx context.Context, dst []byte) (int64, error)
}

// ReadAll reads the whole blob into dst using the most efficient capability
// the blob offers. dst must hold at least Size() bytes.
func ReadAll(ctx context.Context, b Blob, dst []byte) (int64, error) {
	size := b.Size()
	if int64(len(dst)) < size {
		return 0, fmt.Errorf("blobstore: destination holds %d bytes, blob has %d", len(dst), size)
	}
	if size == 0 {
		return 0, nil
	}

	if d, ok := b.(Downloader); ok {
		return d.Download(ctx, dst)
	}

	rc, err := b.ReadRange(ctx, 0, size)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	n, err := io.ReadFull(rc, dst[:size])
	return int64(n), err
}

// clampRange bounds [off, off+length) to a blob of size bytes.
func clampRange(off, length, size int64) (int64, error) {
	if off < 0 || length < 0 {
		return 0, fmt.Errorf("blobstore: invalid range %d+%d", off, length)
	}
	if off >= size {
		return 0, io.EOF
	}
	return min(off+length, size), nil
}
