package mmap

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

var (
	// ErrClosed is returned by operations on an unmapped region.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for non-positive anonymous sizes and for
	// files too large to address.
	ErrInvalidSize = errors.New("mmap: invalid size")
)

// AccessPattern is an madvise(2) hint.
type AccessPattern int

const (
	AccessNormal AccessPattern = iota
	AccessSequential
	AccessRandom
)

func (p AccessPattern) advice() int {
	switch p {
	case AccessSequential:
		return unix.MADV_SEQUENTIAL
	case AccessRandom:
		return unix.MADV_RANDOM
	default:
		return unix.MADV_NORMAL
	}
}

// Mapping is a mapped region owned until Close.
type Mapping struct {
	data   []byte
	anon   bool
	closed atomic.Bool
}

// Open maps the file at path read-only and private. The descriptor is
// closed before Open returns. An empty file yields an empty mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrInvalidSize, path, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap: map %s: %w", path, err)
	}
	return &Mapping{data: data}, nil
}

// MapAnon maps size bytes of zeroed, page-aligned, private read-write
// memory.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap: map anonymous %d bytes: %w", size, err)
	}
	return &Mapping{data: data, anon: true}, nil
}

// Bytes returns the region, or nil once closed.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the length of the region.
func (m *Mapping) Size() int {
	return len(m.data)
}

// Anonymous reports whether the region came from MapAnon.
func (m *Mapping) Anonymous() bool {
	return m.anon
}

// Closed reports whether Close has been called.
func (m *Mapping) Closed() bool {
	return m.closed.Load()
}

// Advise passes an access pattern hint to the kernel. EINVAL is ignored.
func (m *Mapping) Advise(p AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	if err := unix.Madvise(m.data, p.advice()); err != nil && err != unix.EINVAL {
		return fmt.Errorf("mmap: madvise: %w", err)
	}
	return nil
}

// Close unmaps the region. Later calls return nil.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.data == nil {
		return nil
	}
	if err := unix.Munmap(m.data); err != nil {
		return fmt.Errorf("mmap: munmap: %w", err)
	}
	return nil
}

// PageSize returns the system page size.
func PageSize() int {
	return unix.Getpagesize()
}
