package mem

import (
	"math/bits"
	"unsafe"
)

// AllocAligned allocates a zeroed byte slice of the given size whose first
// byte sits at an address divisible by align. align must be a power of two.
//
// The allocation is over-sized by align bytes so that an aligned offset
// always exists. The underlying array is kept alive by the returned slice.
// It returns nil if size is not positive or align is not a power of two.
func AllocAligned(size, align int) []byte {
	if size <= 0 || align <= 0 || bits.OnesCount(uint(align)) != 1 {
		return nil
	}

	buf := make([]byte, size+align)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	mask := uintptr(align - 1)
	offset := (uintptr(align) - (addr & mask)) & mask

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// IsAligned reports whether the first byte of b sits on an align boundary.
func IsAligned(b []byte, align int) bool {
	if len(b) == 0 || align <= 0 {
		return false
	}
	addr := uintptr(unsafe.Pointer(&b[0])) //nolint:gosec // unsafe is required for alignment checks
	return addr%uintptr(align) == 0
}
