package dictionary

import (
	"io"
	"log/slog"

	"github.com/hupe1980/sharky/buffer"
)

type options struct {
	logger  *slog.Logger
	alloc   *buffer.Allocator
	seed    uint64
	hasSeed bool
}

// Option configures Open and OpenStore.
type Option func(*options)

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSeed makes skiplist level promotion deterministic.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}

// WithAllocator sets the allocator for node arenas and loaded text.
func WithAllocator(a *buffer.Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.alloc = a
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.alloc == nil {
		o.alloc = buffer.NewAllocator()
	}
	return o
}
