package sharky

import (
	"github.com/hupe1980/sharky/buffer"
	"github.com/hupe1980/sharky/dictionary"
)

// ResourceLimits bounds the resources of a pipeline. Zero means unlimited.
type ResourceLimits struct {
	// MemoryBytes caps the memory held by buffers and dictionary arenas.
	MemoryBytes int64
	// IOBytesPerSec caps the writer's throughput into the pipe.
	IOBytesPerSec int64
}

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	limits           ResourceLimits
	alloc            *buffer.Allocator
	writerStrategy   buffer.Strategy
	reader           Worker
	dictOptions      []dictionary.Option
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger. Default: warnings and errors as text on stderr.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &sharky.BasicMetricsCollector{}
//	p, _ := sharky.New(cfg, sharky.WithMetricsCollector(metrics))
//	_ = p.Run(ctx)
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceLimits bounds buffer memory and pipe throughput.
// The memory limit only applies to the default allocator.
func WithResourceLimits(limits ResourceLimits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithAllocator replaces the default allocator. Tests use it to shrink the
// page size.
func WithAllocator(a *buffer.Allocator) Option {
	return func(o *options) {
		o.alloc = a
	}
}

// WithWriterStrategy selects the writer's buffer strategy. PageMapped
// buffers are gifted to the pipe, others are copied. Default: PageMapped
// where gifting is supported, PageAlignedHeap elsewhere.
func WithWriterStrategy(s buffer.Strategy) Option {
	return func(o *options) {
		o.writerStrategy = s
	}
}

// WithReader replaces the reader worker chosen from the configuration.
func WithReader(w Worker) Option {
	return func(o *options) {
		o.reader = w
	}
}

// WithDictionaryOptions passes options to dictionary.Open.
func WithDictionaryOptions(opts ...dictionary.Option) Option {
	return func(o *options) {
		o.dictOptions = append(o.dictOptions, opts...)
	}
}
