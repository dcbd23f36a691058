package buffer

import (
	"fmt"
	"math/bits"

	"github.com/hupe1980/sharky/internal/mem"
	"github.com/hupe1980/sharky/internal/mmap"
)

// MemoryAcquirer accounts for buffer memory.
// *resource.Controller satisfies it.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Allocator creates buffers. It carries the page size, resolved once, that
// every page-sized allocation is validated against.
type Allocator struct {
	pageSize int
	acquirer MemoryAcquirer
}

// AllocatorOption configures an Allocator.
type AllocatorOption func(*Allocator)

// WithPageSize overrides the system page size. size must be a power of two.
func WithPageSize(size int) AllocatorOption {
	return func(a *Allocator) {
		a.pageSize = size
	}
}

// WithMemoryAcquirer accounts every allocation against acquirer.
func WithMemoryAcquirer(acquirer MemoryAcquirer) AllocatorOption {
	return func(a *Allocator) {
		a.acquirer = acquirer
	}
}

// NewAllocator creates an Allocator using the system page size.
// It panics if an overridden page size is not a positive power of two.
func NewAllocator(opts ...AllocatorOption) *Allocator {
	a := &Allocator{pageSize: mmap.PageSize()}
	for _, opt := range opts {
		opt(a)
	}
	if a.pageSize <= 0 || bits.OnesCount(uint(a.pageSize)) != 1 {
		panic(fmt.Sprintf("buffer: invalid page size %d", a.pageSize))
	}
	return a
}

// PageSize returns the page size used for validation and alignment.
func (a *Allocator) PageSize() int {
	return a.pageSize
}

// Pages returns the length in bytes of n pages.
func (a *Allocator) Pages(n int) int {
	return n * a.pageSize
}

// New allocates a zeroed buffer of length bytes with the given strategy.
// PageMapped and PageAlignedHeap lengths must be an exact multiple of the
// page size.
func (a *Allocator) New(strategy Strategy, length int) (*Buffer, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	if strategy.pageSized() && length%a.pageSize != 0 {
		return nil, fmt.Errorf("%w: %s length %d is not a multiple of page size %d",
			ErrInvalidLength, strategy, length, a.pageSize)
	}

	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(int64(length)); err != nil {
			return nil, fmt.Errorf("buffer: create %s: %w", strategy, err)
		}
	}

	b := &Buffer{alloc: a, strategy: strategy}

	switch strategy {
	case PageMapped:
		m, err := mmap.MapAnon(length)
		if err != nil {
			a.release(length)
			return nil, fmt.Errorf("buffer: create %s: %w", strategy, err)
		}
		b.mapping = m
		b.data = m.Bytes()
	case PageAlignedHeap:
		b.data = mem.AllocAligned(length, a.pageSize)
	case GenericHeap:
		b.data = make([]byte, length)
	default:
		a.release(length)
		panic(fmt.Sprintf("buffer: create: invalid strategy %s", strategy))
	}

	return b, nil
}

func (a *Allocator) release(bytes int) {
	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(int64(bytes))
	}
}
