package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when an acquisition would exceed the
// memory limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits. Zero disables a limit.
type Config struct {
	// MemoryLimitBytes caps bytes held by live buffers. Usage is tracked
	// even without a limit.
	MemoryLimitBytes int64

	// IOLimitBytesPerSec caps the throughput into the pipe.
	IOLimitBytesPerSec int64
}

// Controller accounts buffer memory and throttles pipe IO. A nil
// *Controller imposes no limits and tracks nothing.
type Controller struct {
	limit int64
	sem   *semaphore.Weighted
	used  atomic.Int64
	peak  atomic.Int64

	io    *rate.Limiter
	burst int
}

// NewController creates a Controller for cfg.
func NewController(cfg Config) *Controller {
	c := &Controller{limit: cfg.MemoryLimitBytes}
	if cfg.MemoryLimitBytes > 0 {
		c.sem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		// One second of traffic may go out at once.
		c.burst = int(min(cfg.IOLimitBytesPerSec, int64(^uint32(0)>>1)))
		c.io = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), c.burst)
	}
	return c
}

// AcquireMemory reserves bytes without blocking.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.sem != nil && !c.sem.TryAcquire(bytes) {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			ErrMemoryLimitExceeded, bytes, c.used.Load(), c.limit)
	}

	used := c.used.Add(bytes)
	for peak := c.peak.Load(); used > peak; peak = c.peak.Load() {
		if c.peak.CompareAndSwap(peak, used) {
			break
		}
	}
	return nil
}

// ReleaseMemory returns bytes reserved by AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.sem != nil {
		c.sem.Release(bytes)
	}
	c.used.Add(-bytes)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.used.Load()
}

// MemoryPeak returns the highest MemoryUsage observed.
func (c *Controller) MemoryPeak() int64 {
	if c == nil {
		return 0
	}
	return c.peak.Load()
}

// MemoryLimit returns the configured limit, 0 if unlimited.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.limit
}

// AcquireIO blocks until bytes may be written or ctx is done. Requests
// above the burst size wait in burst-sized steps.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.io == nil {
		return nil
	}
	for bytes > 0 {
		n := min(bytes, c.burst)
		if err := c.io.WaitN(ctx, n); err != nil {
			return fmt.Errorf("io limit: %w", err)
		}
		bytes -= n
	}
	return nil
}
