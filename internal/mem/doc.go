// Package mem provides aligned heap allocation.
//
// # Aligned Allocation
//
// AllocAligned backs the PageAlignedHeap buffer strategy: the slice lives on
// the Go heap but starts on an alignment boundary, typically the system page
// size.
package mem
