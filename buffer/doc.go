// Package buffer implements strategy-tagged byte buffers with a bump
// allocating write head.
//
// Three allocation backends share one contract:
//
//   - PageMapped: a private anonymous mapping (mmap(2)). Only PageMapped
//     buffers can be gifted to a pipe without copying.
//   - PageAlignedHeap: Go heap memory starting on a page boundary.
//   - GenericHeap: plain Go heap memory; the only strategy that can Grow.
//
// Every buffer keeps Head() + Remaining() == Len(). Writes go through
// AppendLine, Claim, FillFrom or ReadFrom; Wipe zeroes the region and
// rewinds the head.
//
// # Ownership
//
// A Buffer is an owned resource. Dispose releases it through the strategy's
// release path, and Gift consumes a PageMapped buffer: its pages belong to
// the kernel afterwards and the caller continues with the fresh buffer Gift
// returns. Any method call on a disposed or gifted buffer panics.
//
//	alloc := buffer.NewAllocator()
//	b, err := alloc.New(buffer.PageMapped, alloc.PageSize())
//	if err != nil { ... }
//
//	for _, line := range lines {
//	    for {
//	        err := b.AppendLine(line)
//	        if !errors.Is(err, buffer.ErrInsufficientRoom) {
//	            break
//	        }
//	        if b, err = buffer.Gift(b, fd); err != nil { ... }
//	    }
//	}
package buffer
