// Package arena provides a bump-allocation pool built from buffer.Buffer
// arenas.
//
// Allocations are addressed by Ref, a stable 64-bit reference combining the
// arena index and the byte offset inside that arena. Refs stay valid while
// the pool grows; slices returned by Alloc and Bytes stay valid until Free.
//
// Individual allocations are never released. The whole pool is freed at
// once.
package arena
