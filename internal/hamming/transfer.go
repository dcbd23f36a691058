package hamming

import (
	"context"

	"github.com/hupe1980/sharky/buffer"
)

// Transferer moves a full buffer downstream and returns the buffer to keep
// writing into.
type Transferer interface {
	Transfer(ctx context.Context, b *buffer.Buffer) (*buffer.Buffer, error)
}

// IOLimiter throttles transfers. *resource.Controller satisfies it.
type IOLimiter interface {
	AcquireIO(ctx context.Context, bytes int) error
}

// GiftTransfer gifts PageMapped buffers to a pipe without copying.
// Each transfer consumes the buffer and returns a fresh one.
type GiftTransfer struct {
	Fd      int
	Limiter IOLimiter
}

// Transfer implements Transferer.
func (g GiftTransfer) Transfer(ctx context.Context, b *buffer.Buffer) (*buffer.Buffer, error) {
	if g.Limiter != nil {
		if err := g.Limiter.AcquireIO(ctx, b.Len()); err != nil {
			return b, err
		}
	}
	return buffer.Gift(b, g.Fd)
}

// CopyTransfer writes the whole buffer, padding included, and reuses it.
// It works for every strategy and keeps the same chunked wire format as
// GiftTransfer.
type CopyTransfer struct {
	Fd      int
	Limiter IOLimiter
}

// Transfer implements Transferer.
func (c CopyTransfer) Transfer(ctx context.Context, b *buffer.Buffer) (*buffer.Buffer, error) {
	if c.Limiter != nil {
		if err := c.Limiter.AcquireIO(ctx, b.Len()); err != nil {
			return b, err
		}
	}
	if err := b.CopyTo(c.Fd); err != nil {
		return b, err
	}
	b.Wipe()
	return b, nil
}

// TransferFunc adapts a function to the Transferer interface.
type TransferFunc func(ctx context.Context, b *buffer.Buffer) (*buffer.Buffer, error)

// Transfer implements Transferer.
func (f TransferFunc) Transfer(ctx context.Context, b *buffer.Buffer) (*buffer.Buffer, error) {
	return f(ctx, b)
}
