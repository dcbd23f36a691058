package arena

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/sharky/buffer"
)

const (
	// Alignment is the alignment of every allocation.
	Alignment = 8

	// initialDirectory is the number of directory slots allocated up front.
	initialDirectory = 4
)

var (
	// ErrClosed is returned when allocating from a freed pool.
	ErrClosed = errors.New("arena: pool is freed")
	// ErrInvalidRef is returned when resolving a reference the pool did not hand out.
	ErrInvalidRef = errors.New("arena: invalid reference")
)

// Ref addresses an allocation: the arena index in the upper 32 bits and the
// offset inside the arena in the lower 32 bits.
type Ref uint64

// Nil is the zero reference. The pool never hands it out.
const Nil Ref = 0

func makeRef(arena, offset int) Ref {
	return Ref(uint64(arena)<<32 | uint64(offset))
}

// Arena returns the arena index.
func (r Ref) Arena() int { return int(r >> 32) }

// Offset returns the byte offset inside the arena.
func (r Ref) Offset() int { return int(r & math.MaxUint32) }

func (r Ref) String() string {
	return fmt.Sprintf("%d:%d", r.Arena(), r.Offset())
}

// Stats tracks pool memory usage.
type Stats struct {
	Arenas        int   // arenas currently held
	DirectoryCap  int   // directory capacity
	BytesReserved int64 // total arena length
	BytesUsed     int64 // bytes requested by allocations
	BytesWasted   int64 // alignment padding plus abandoned arena tails
	TotalAllocs   int64
}

// Pool hands out memory from a growing list of arenas. When the current
// arena lacks room a new one is appended; the directory doubles its
// capacity when full.
//
// A Pool is not safe for concurrent use.
type Pool struct {
	alloc     *buffer.Allocator
	arenaSize int
	arenas    []*buffer.Buffer
	stats     Stats
	freed     bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithArenaSize sets the length of a regular arena. The default is one page.
func WithArenaSize(size int) Option {
	return func(p *Pool) {
		p.arenaSize = size
	}
}

// New creates a Pool whose arenas are GenericHeap buffers from alloc.
// Offset 0 of the first arena is reserved so no allocation is ever Nil.
func New(alloc *buffer.Allocator, opts ...Option) (*Pool, error) {
	p := &Pool{
		alloc:     alloc,
		arenaSize: alloc.PageSize(),
		arenas:    make([]*buffer.Buffer, 0, initialDirectory),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.arenaSize < Alignment || p.arenaSize > math.MaxUint32 {
		return nil, fmt.Errorf("arena: invalid arena size %d", p.arenaSize)
	}

	if err := p.grow(p.arenaSize); err != nil {
		return nil, err
	}
	if _, err := p.arenas[0].Claim(Alignment); err != nil {
		return nil, err
	}
	p.stats.BytesWasted += Alignment
	return p, nil
}

// Alloc returns size zeroed bytes and their reference.
// Requests larger than the arena size get an arena of their own.
func (p *Pool) Alloc(size int) (Ref, []byte, error) {
	if p.freed {
		return Nil, nil, ErrClosed
	}
	if size <= 0 {
		return Nil, nil, fmt.Errorf("arena: invalid allocation size %d", size)
	}

	aligned := (size + Alignment - 1) &^ (Alignment - 1)
	cur := p.arenas[len(p.arenas)-1]

	if cur.Remaining() < aligned {
		p.stats.BytesWasted += int64(cur.Remaining())
		if err := p.grow(max(p.arenaSize, aligned)); err != nil {
			return Nil, nil, err
		}
		cur = p.arenas[len(p.arenas)-1]
	}

	offset := cur.Head()
	mem, err := cur.Claim(aligned)
	if err != nil {
		return Nil, nil, err
	}

	p.stats.BytesUsed += int64(size)
	p.stats.BytesWasted += int64(aligned - size)
	p.stats.TotalAllocs++
	return makeRef(len(p.arenas)-1, offset), mem[:size:size], nil
}

func (p *Pool) grow(length int) error {
	if len(p.arenas) == math.MaxUint32 {
		return fmt.Errorf("arena: directory full")
	}
	b, err := p.alloc.New(buffer.GenericHeap, length)
	if err != nil {
		return fmt.Errorf("arena: new arena: %w", err)
	}

	if len(p.arenas) == cap(p.arenas) {
		dir := make([]*buffer.Buffer, len(p.arenas), 2*cap(p.arenas))
		copy(dir, p.arenas)
		p.arenas = dir
	}
	p.arenas = append(p.arenas, b)

	p.stats.Arenas = len(p.arenas)
	p.stats.DirectoryCap = cap(p.arenas)
	p.stats.BytesReserved += int64(length)
	return nil
}

// Bytes returns the size bytes at ref.
func (p *Pool) Bytes(ref Ref, size int) ([]byte, error) {
	if p.freed {
		return nil, ErrClosed
	}
	idx, off := ref.Arena(), ref.Offset()
	if ref == Nil || idx >= len(p.arenas) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRef, ref)
	}
	b := p.arenas[idx]
	if size < 0 || off+size > b.Head() {
		return nil, fmt.Errorf("%w: %s+%d beyond arena head %d", ErrInvalidRef, ref, size, b.Head())
	}
	return b.Bytes()[off : off+size : off+size], nil
}

// MustBytes is like Bytes but panics on an invalid reference.
func (p *Pool) MustBytes(ref Ref, size int) []byte {
	mem, err := p.Bytes(ref, size)
	if err != nil {
		panic(err)
	}
	return mem
}

// Stats returns a snapshot of the pool's usage.
func (p *Pool) Stats() Stats {
	return p.stats
}

// Free disposes every arena. It is safe to call more than once.
func (p *Pool) Free() error {
	if p.freed {
		return nil
	}
	p.freed = true

	var errs []error
	for _, b := range p.arenas {
		if err := b.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	p.arenas = nil
	p.stats = Stats{}
	return errors.Join(errs...)
}
