// Package resource bounds the memory held by buffers and the rate at which
// the writer fills the pipe.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   64 << 20,
//	    IOLimitBytesPerSec: 8 << 20,
//	})
//
// Memory acquisition never blocks: a buffer that does not fit fails with
// ErrMemoryLimitExceeded and the caller treats it as resource exhaustion.
// IO acquisition waits on a token bucket.
package resource
