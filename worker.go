package sharky

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/sharky/buffer"
	"github.com/hupe1980/sharky/dictionary"
	"github.com/hupe1980/sharky/internal/hamming"
)

// Worker runs one side of the pipe. fd is owned by the pipeline, which
// closes it after Run returns; a worker must not close it.
type Worker interface {
	Run(ctx context.Context, fd int) error
}

// WorkerFunc adapts a function to the Worker interface.
type WorkerFunc func(ctx context.Context, fd int) error

// Run implements Worker.
func (f WorkerFunc) Run(ctx context.Context, fd int) error {
	return f(ctx, fd)
}

// Dictionary is the lookup side of a dictionary.Index.
type Dictionary interface {
	Find(key []byte) (uint32, bool)
}

// GeneratorWorker writes every candidate of Generator to the pipe in
// page-sized chunks.
type GeneratorWorker struct {
	Generator *hamming.Generator
	Alloc     *buffer.Allocator
	Strategy  buffer.Strategy
	Limiter   hamming.IOLimiter
	Logger    *Logger
	Metrics   MetricsCollector
}

// Run implements Worker.
func (w *GeneratorWorker) Run(ctx context.Context, fd int) error {
	b, err := w.Alloc.New(w.Strategy, w.Alloc.PageSize())
	if err != nil {
		return fmt.Errorf("allocate chunk: %w", err)
	}

	var inner hamming.Transferer = hamming.CopyTransfer{Fd: fd, Limiter: w.Limiter}
	if w.Strategy == buffer.PageMapped {
		inner = hamming.GiftTransfer{Fd: fd, Limiter: w.Limiter}
	}
	t := hamming.TransferFunc(func(ctx context.Context, b *buffer.Buffer) (*buffer.Buffer, error) {
		n := b.Len()
		start := time.Now()
		next, err := inner.Transfer(ctx, b)
		d := time.Since(start)
		w.Metrics.RecordTransfer(n, d, err)
		w.Logger.LogTransfer(ctx, n, d, err)
		return next, err
	})

	b, stats, err := w.Generator.Run(ctx, b, t)
	if b != nil {
		if derr := b.Dispose(); err == nil {
			err = derr
		}
	}
	if err != nil {
		return err
	}

	for i, c := range stats.Candidates {
		w.Metrics.RecordCandidates(i+1, c)
	}
	w.Logger.LogGeneratorDone(ctx, w.Generator.Name(), w.Generator.MaxDistance(), stats.Total(), stats.Transfers)
	return nil
}

// PassThrough copies the candidate stream to Out, one page at a time,
// without the zero padding.
type PassThrough struct {
	Out   int
	Alloc *buffer.Allocator
}

// Run implements Worker.
func (p *PassThrough) Run(_ context.Context, fd int) (err error) {
	b, err := p.Alloc.New(buffer.PageAlignedHeap, p.Alloc.PageSize())
	if err != nil {
		return fmt.Errorf("allocate chunk: %w", err)
	}
	defer func() {
		if derr := b.Dispose(); err == nil {
			err = derr
		}
	}()

	for {
		eof, err := b.FillFrom(fd)
		if err != nil {
			return err
		}
		if err := b.FlushTo(p.Out); err != nil {
			return err
		}
		b.Wipe()
		if eof {
			return nil
		}
	}
}

// FilterStats summarizes a DictionaryFilter run.
type FilterStats struct {
	Checked  int
	Hits     int
	Distinct uint64 // dictionary entries matched at least once
}

// DictionaryFilter emits the candidates found in a dictionary. It uses
// Dictionary when set and otherwise opens Path for the duration of Run.
type DictionaryFilter struct {
	Dictionary  Dictionary
	Path        string
	DictOptions []dictionary.Option
	Out         int
	Alloc       *buffer.Allocator
	Logger      *Logger
	Metrics     MetricsCollector

	stats   FilterStats
	matched *roaring.Bitmap
}

// Stats returns the totals of the last Run.
func (f *DictionaryFilter) Stats() FilterStats {
	return f.stats
}

// Run implements Worker.
func (f *DictionaryFilter) Run(ctx context.Context, fd int) (err error) {
	dict := f.Dictionary
	if dict == nil {
		start := time.Now()
		var idx *dictionary.Index
		idx, err = dictionary.Open(ctx, f.Path, f.DictOptions...)
		if err != nil {
			f.Logger.LogDictionaryLoaded(ctx, f.Path, 0, time.Since(start), err)
			return err
		}
		f.Logger.LogDictionaryLoaded(ctx, f.Path, idx.Len(), time.Since(start), nil)
		defer func() {
			if cerr := idx.Close(); err == nil {
				err = cerr
			}
		}()
		dict = idx
	}

	in, err := f.Alloc.New(buffer.PageAlignedHeap, f.Alloc.PageSize())
	if err != nil {
		return fmt.Errorf("allocate input chunk: %w", err)
	}
	defer func() { _ = in.Dispose() }()

	out, err := f.Alloc.New(buffer.PageAlignedHeap, f.Alloc.PageSize())
	if err != nil {
		return fmt.Errorf("allocate output chunk: %w", err)
	}
	defer func() { _ = out.Dispose() }()

	f.stats = FilterStats{}
	f.matched = roaring.New()

	// A record cut by a chunk boundary continues in the next chunk.
	carry := make([]byte, 0, hamming.MaxNameLen+1)

	for {
		eof, err := in.FillFrom(fd)
		if err != nil {
			return err
		}

		data := in.Written()
		for len(data) > 0 {
			i := bytes.IndexByte(data, '\n')
			if i < 0 {
				carry = append(carry, data...)
				break
			}
			rec := data[:i]
			if len(carry) > 0 {
				carry = append(carry, rec...)
				rec = carry
			}
			if err := f.check(dict, rec, out); err != nil {
				return err
			}
			carry = carry[:0]
			data = data[i+1:]
		}
		in.Wipe()

		if eof {
			break
		}
	}

	if err := f.check(dict, carry, out); err != nil {
		return err
	}
	if out.Dirty() {
		if err := out.FlushTo(f.Out); err != nil {
			return err
		}
	}

	f.stats.Distinct = f.matched.GetCardinality()
	f.Logger.LogFilterSummary(ctx, f.stats.Checked, f.stats.Hits, f.stats.Distinct)
	return nil
}

// check looks rec up and queues it for output on a hit. Zero padding
// around rec is ignored.
func (f *DictionaryFilter) check(dict Dictionary, rec []byte, out *buffer.Buffer) error {
	rec = bytes.Trim(rec, "\x00")
	if len(rec) == 0 {
		return nil
	}

	f.stats.Checked++
	start := time.Now()
	ord, ok := dict.Find(rec)
	f.Metrics.RecordLookup(ok, time.Since(start))
	if !ok {
		return nil
	}

	f.stats.Hits++
	f.matched.Add(ord)

	for {
		err := out.AppendLine(rec)
		if err == nil {
			return nil
		}
		if !errors.Is(err, buffer.ErrInsufficientRoom) {
			return err
		}
		if err := out.FlushTo(f.Out); err != nil {
			return err
		}
		out.Wipe()
	}
}
