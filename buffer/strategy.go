package buffer

import "fmt"

// Strategy selects how a buffer's memory is allocated and released.
type Strategy int

const (
	// Unallocated marks a disposed or gifted buffer.
	Unallocated Strategy = iota
	// PageMapped buffers are anonymous memory mappings.
	PageMapped
	// PageAlignedHeap buffers are page-aligned Go heap allocations.
	PageAlignedHeap
	// GenericHeap buffers are ordinary Go heap allocations.
	GenericHeap
)

func (s Strategy) String() string {
	switch s {
	case Unallocated:
		return "unallocated"
	case PageMapped:
		return "page-mapped"
	case PageAlignedHeap:
		return "page-aligned-heap"
	case GenericHeap:
		return "generic-heap"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy converts the String form back into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "page-mapped", "mmap":
		return PageMapped, nil
	case "page-aligned-heap", "aligned":
		return PageAlignedHeap, nil
	case "generic-heap", "heap":
		return GenericHeap, nil
	default:
		return Unallocated, fmt.Errorf("buffer: unknown strategy %q", s)
	}
}

// pageSized reports whether the strategy requires page-multiple lengths.
func (s Strategy) pageSized() bool {
	return s == PageMapped || s == PageAlignedHeap
}
