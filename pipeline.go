package sharky

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hupe1980/sharky/buffer"
	"github.com/hupe1980/sharky/dictionary"
	"github.com/hupe1980/sharky/internal/hamming"
	"github.com/hupe1980/sharky/internal/resource"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// Pipeline connects a writer and a reader worker through a kernel pipe.
type Pipeline struct {
	cfg       Config
	opts      options
	resources *resource.Controller
	writer    Worker
	reader    Worker
}

// New validates cfg and assembles the workers.
func New(cfg Config, optFns ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	o := options{
		logger:           NewLogger(nil),
		metricsCollector: NoopMetricsCollector{},
		writerStrategy:   buffer.PageAlignedHeap,
	}
	if buffer.GiftSupported {
		o.writerStrategy = buffer.PageMapped
	}
	for _, fn := range optFns {
		fn(&o)
	}

	gen, err := hamming.New(cfg.Name, cfg.MaxDistance)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if o.writerStrategy == buffer.Unallocated {
		return nil, fmt.Errorf("%w: writer strategy %s", ErrInvalidConfig, o.writerStrategy)
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.limits.MemoryBytes,
		IOLimitBytesPerSec: o.limits.IOBytesPerSec,
	})
	if o.alloc == nil {
		o.alloc = buffer.NewAllocator(buffer.WithMemoryAcquirer(rc))
	}

	p := &Pipeline{
		cfg:       cfg,
		opts:      o,
		resources: rc,
		writer: &GeneratorWorker{
			Generator: gen,
			Alloc:     o.alloc,
			Strategy:  o.writerStrategy,
			Limiter:   rc,
			Logger:    o.logger.WithRole(RoleWriter),
			Metrics:   o.metricsCollector,
		},
		reader: o.reader,
	}

	if p.reader == nil {
		out := int(cfg.Output.Fd())
		if cfg.DictionaryPath != "" {
			p.reader = &DictionaryFilter{
				Path:        cfg.DictionaryPath,
				DictOptions: o.dictionaryOptions(o.alloc),
				Out:         out,
				Alloc:       o.alloc,
				Logger:      o.logger.WithRole(RoleReader),
				Metrics:     o.metricsCollector,
			}
		} else {
			p.reader = &PassThrough{Out: out, Alloc: o.alloc}
		}
	}
	return p, nil
}

// Reader returns the reader worker.
func (p *Pipeline) Reader() Worker {
	return p.reader
}

// MemoryPeak returns the peak buffer memory accounted so far.
func (p *Pipeline) MemoryPeak() int64 {
	return p.resources.MemoryPeak()
}

// Run creates the pipe, runs both workers to completion and reports the
// first relevant failure. Each worker's pipe end is closed as soon as that
// worker returns, so a failing reader makes the writer fail with EPIPE
// instead of blocking, and a failing writer ends the reader's stream.
//
// A reader failure takes precedence over a writer failure.
func (p *Pipeline) Run(ctx context.Context) error {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return fmt.Errorf("pipe: %w", err)
	}
	readFd, writeFd := fds[0], fds[1]

	p.opts.logger.DebugContext(ctx, "pipeline started",
		"name", p.cfg.Name,
		"max_distance", p.cfg.MaxDistance,
		"dictionary", p.cfg.DictionaryPath,
		"writer_strategy", p.opts.writerStrategy.String(),
	)

	var readerErr, writerErr error
	var g errgroup.Group
	g.Go(func() error {
		readerErr = p.runWorker(ctx, RoleReader, p.reader, readFd)
		return readerErr
	})
	g.Go(func() error {
		writerErr = p.runWorker(ctx, RoleWriter, p.writer, writeFd)
		return writerErr
	})
	_ = g.Wait()

	if readerErr != nil {
		return &WorkerError{Role: RoleReader, Err: readerErr}
	}
	if writerErr != nil {
		return &WorkerError{Role: RoleWriter, Err: writerErr}
	}
	return nil
}

func (p *Pipeline) runWorker(ctx context.Context, role string, w Worker, fd int) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if cerr := unix.Close(fd); err == nil && cerr != nil {
			err = fmt.Errorf("close pipe: %w", cerr)
		}
		p.opts.logger.LogWorkerExit(ctx, role, time.Since(start), err)
	}()
	return w.Run(ctx, fd)
}

func (o options) dictionaryOptions(alloc *buffer.Allocator) []dictionary.Option {
	opts := []dictionary.Option{
		dictionary.WithLogger(o.logger.Logger),
		dictionary.WithAllocator(alloc),
	}
	return append(opts, o.dictOptions...)
}
