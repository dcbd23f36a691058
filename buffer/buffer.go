package buffer

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/sharky/internal/mmap"
)

var (
	// ErrInsufficientRoom is returned when a write does not fit in the
	// remaining capacity.
	ErrInsufficientRoom = errors.New("buffer: insufficient room")
	// ErrInvalidLength is returned for lengths a strategy cannot allocate.
	ErrInvalidLength = errors.New("buffer: invalid length")
	// ErrRecordTooLarge is returned when a record can never fit, even in an
	// empty buffer.
	ErrRecordTooLarge = errors.New("buffer: record larger than buffer")
	// ErrGiftUnsupported is returned by Gift on platforms without vmsplice(2).
	ErrGiftUnsupported = errors.New("buffer: page gifting not supported on this platform")
)

// Buffer is an owned region of memory with a write head.
// A Buffer is not safe for concurrent use.
type Buffer struct {
	alloc    *Allocator
	strategy Strategy
	data     []byte
	mapping  *mmap.Mapping // PageMapped only

	// Write head. Remaining capacity is len(data) - head.
	head int

	// Only guaranteed if the buffer is written solely through its methods.
	dirty bool
}

func (b *Buffer) mustLive(op string) {
	if b == nil || b.strategy == Unallocated {
		panic(fmt.Sprintf("buffer: %s on disposed or gifted buffer", op))
	}
}

// Strategy returns the allocation strategy.
func (b *Buffer) Strategy() Strategy {
	if b == nil {
		return Unallocated
	}
	return b.strategy
}

// Len returns the length of the region in bytes.
func (b *Buffer) Len() int {
	b.mustLive("len")
	return len(b.data)
}

// Head returns the write-head offset.
func (b *Buffer) Head() int {
	b.mustLive("head")
	return b.head
}

// Remaining returns the capacity left after the write head.
func (b *Buffer) Remaining() int {
	b.mustLive("remaining")
	return len(b.data) - b.head
}

// Dirty reports whether the buffer was written since creation or the last Wipe.
func (b *Buffer) Dirty() bool {
	b.mustLive("dirty")
	return b.dirty
}

// Bytes returns the whole region, including zero padding after the head.
// The slice is valid until the buffer is disposed, gifted or grown.
func (b *Buffer) Bytes() []byte {
	b.mustLive("bytes")
	return b.data
}

// Written returns the region up to the write head.
func (b *Buffer) Written() []byte {
	b.mustLive("written")
	return b.data[:b.head]
}

// AppendLine writes text followed by '\n' at the write head.
//
// If the record does not fit, nothing of it is written: the rest of the
// buffer is zero-filled, the buffer is marked dirty, the head stays put and
// ErrInsufficientRoom is returned. The caller transfers the buffer and
// retries with a fresh one. ErrRecordTooLarge is returned instead when the
// buffer is clean and still too small.
func (b *Buffer) AppendLine(text []byte) error {
	b.mustLive("append line")

	need := len(text) + 1
	if need > len(b.data)-b.head {
		if b.head == 0 && !b.dirty {
			return fmt.Errorf("%w: %d bytes, buffer holds %d", ErrRecordTooLarge, need, len(b.data))
		}
		clear(b.data[b.head:])
		b.dirty = true
		return ErrInsufficientRoom
	}

	n := copy(b.data[b.head:], text)
	b.data[b.head+n] = '\n'
	b.head += need
	b.dirty = true
	return nil
}

// Claim bump-allocates n bytes at the write head and returns them.
// The returned slice aliases the buffer; it is not zeroed again.
func (b *Buffer) Claim(n int) ([]byte, error) {
	b.mustLive("claim")

	if n <= 0 {
		return nil, fmt.Errorf("%w: claim %d", ErrInvalidLength, n)
	}
	if n > len(b.data)-b.head {
		return nil, ErrInsufficientRoom
	}

	p := b.data[b.head : b.head+n : b.head+n]
	b.head += n
	b.dirty = true
	return p, nil
}

// Grow reallocates a GenericHeap buffer to newLength bytes, zero-filling the
// new tail. Written bytes and the head offset are preserved even though the
// region's address changes.
func (b *Buffer) Grow(newLength int) error {
	b.mustLive("grow")

	if b.strategy != GenericHeap {
		panic(fmt.Sprintf("buffer: grow: %s buffers cannot grow", b.strategy))
	}
	if newLength <= len(b.data) {
		return fmt.Errorf("%w: grow from %d to %d", ErrInvalidLength, len(b.data), newLength)
	}

	delta := newLength - len(b.data)
	if b.alloc.acquirer != nil {
		if err := b.alloc.acquirer.AcquireMemory(int64(delta)); err != nil {
			return fmt.Errorf("buffer: grow: %w", err)
		}
	}

	grown := make([]byte, newLength)
	copy(grown, b.data)
	b.data = grown
	return nil
}

// Wipe zero-fills the buffer, rewinds the write head and clears the dirty flag.
func (b *Buffer) Wipe() {
	b.mustLive("wipe")

	clear(b.data)
	b.head = 0
	b.dirty = false
}

// ReadFrom implements io.ReaderFrom. It reads until EOF at the write head.
// GenericHeap buffers double in length when full; other strategies return
// ErrInsufficientRoom once full.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	b.mustLive("read from")

	var total int64
	for {
		if b.head == len(b.data) {
			if b.strategy != GenericHeap {
				return total, ErrInsufficientRoom
			}
			if err := b.Grow(2 * len(b.data)); err != nil {
				return total, err
			}
		}

		n, err := r.Read(b.data[b.head:])
		if n > 0 {
			b.head += n
			b.dirty = true
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// WriteTo implements io.WriterTo. It writes the region without its trailing
// run of zero bytes.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	b.mustLive("write to")

	n, err := w.Write(trimPadding(b.data))
	return int64(n), err
}

// Dispose releases the buffer through its strategy's release path and
// clears the descriptor. Using the buffer afterwards panics.
func (b *Buffer) Dispose() error {
	if b == nil {
		panic("buffer: dispose of nil buffer")
	}

	var err error
	switch b.strategy {
	case PageMapped:
		err = b.mapping.Close()
	case PageAlignedHeap, GenericHeap:
		// Heap memory is reclaimed by the garbage collector.
	default:
		panic(fmt.Sprintf("buffer: dispose: invalid strategy %s", b.strategy))
	}

	b.alloc.release(len(b.data))
	b.reset()

	if err != nil {
		return fmt.Errorf("buffer: dispose: %w", err)
	}
	return nil
}

func (b *Buffer) reset() {
	b.strategy = Unallocated
	b.data = nil
	b.mapping = nil
	b.head = 0
	b.dirty = false
}

func trimPadding(p []byte) []byte {
	return bytes.TrimRight(p, "\x00")
}
