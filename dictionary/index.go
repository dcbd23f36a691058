package dictionary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hupe1980/sharky/blobstore"
	"github.com/hupe1980/sharky/buffer"
	"github.com/hupe1980/sharky/internal/arena"
	"github.com/hupe1980/sharky/internal/conv"
	"github.com/hupe1980/sharky/internal/skiplist"
)

// Stats describes a built Index.
type Stats struct {
	Source     string
	Codec      Codec
	Mapped     bool  // text is the blob's own memory, not a copy
	TextBytes  int64 // size of the decoded text
	Lines      int   // lines read, empty ones included
	Entries    int   // distinct keys
	Duplicates int
	Levels     int
	Arenas     int
	ArenaBytes int64
	BuildTime  time.Duration
}

// Index is an ordered set of dictionary words.
type Index struct {
	source string
	blob   blobstore.Blob
	text   []byte
	buf    *buffer.Buffer // holds text when it is not mapped
	pool   *arena.Pool
	list   *skiplist.List
	stats  Stats
	closed bool
	logger *slog.Logger
}

// Open resolves path and builds an Index over it. path is a local file or
// an s3://, minio:// or minios:// URL; the codec follows the extension.
func Open(ctx context.Context, path string, opts ...Option) (*Index, error) {
	loc, err := parseLocation(path)
	if err != nil {
		return nil, err
	}
	store, err := loc.store(ctx)
	if err != nil {
		return nil, fmt.Errorf("dictionary: %s: %w", path, err)
	}
	return openStore(ctx, store, loc.name, path, opts)
}

// OpenStore builds an Index over the named blob of store.
func OpenStore(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*Index, error) {
	return openStore(ctx, store, name, name, opts)
}

func openStore(ctx context.Context, store blobstore.BlobStore, name, source string, opts []Option) (*Index, error) {
	o := applyOptions(opts)
	start := time.Now()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("dictionary: open %s: %w", source, err)
	}

	idx := &Index{
		source: source,
		blob:   blob,
		logger: o.logger,
		stats:  Stats{Source: source, Codec: CodecFor(name)},
	}

	if err := idx.load(ctx, o.alloc); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("dictionary: load %s: %w", source, err)
	}

	var listOpts []skiplist.Option
	if o.hasSeed {
		listOpts = append(listOpts, skiplist.WithSeed(o.seed))
	}
	if err := idx.build(o.alloc, listOpts); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("dictionary: build %s: %w", source, err)
	}
	idx.stats.BuildTime = time.Since(start)

	o.logger.Debug("dictionary built",
		"source", source,
		"codec", idx.stats.Codec.String(),
		"mapped", idx.stats.Mapped,
		"entries", idx.stats.Entries,
		"duplicates", idx.stats.Duplicates,
		"levels", idx.stats.Levels,
		"arenas", idx.stats.Arenas,
		"duration", idx.stats.BuildTime,
	)
	return idx, nil
}

// load makes the dictionary text addressable: the mapping itself for plain
// mappable blobs, otherwise a GenericHeap buffer filled from the blob.
func (idx *Index) load(ctx context.Context, alloc *buffer.Allocator) error {
	size := idx.blob.Size()

	if idx.stats.Codec == CodecNone {
		if m, ok := idx.blob.(blobstore.Mappable); ok {
			text, err := m.Bytes()
			if err != nil {
				return err
			}
			idx.text = text
			idx.stats.Mapped = true
			idx.stats.TextBytes = int64(len(text))
			return nil
		}
	}
	if size == 0 {
		return nil
	}

	n, err := conv.Int64ToInt(size)
	if err != nil {
		return err
	}

	if idx.stats.Codec == CodecNone {
		// Sized exactly; the blob is downloaded straight into it.
		b, err := alloc.New(buffer.GenericHeap, n)
		if err != nil {
			return err
		}
		idx.buf = b
		dst, err := b.Claim(n)
		if err != nil {
			return err
		}
		read, err := blobstore.ReadAll(ctx, idx.blob, dst)
		if err != nil {
			return err
		}
		idx.text = dst[:read]
		idx.stats.TextBytes = read
		return nil
	}

	// Decoded size is unknown: start at a multiple of the compressed size
	// and let ReadFrom double the buffer.
	b, err := alloc.New(buffer.GenericHeap, max(4*n, alloc.PageSize()))
	if err != nil {
		return err
	}
	idx.buf = b

	rc, err := idx.blob.ReadRange(ctx, 0, size)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	dec, err := idx.stats.Codec.decoder(rc)
	if err != nil {
		return err
	}
	defer func() { _ = dec.Close() }()

	if _, err := b.ReadFrom(dec); err != nil {
		return err
	}
	idx.text = b.Written()
	idx.stats.TextBytes = int64(len(idx.text))
	return nil
}

func (idx *Index) build(alloc *buffer.Allocator, opts []skiplist.Option) error {
	pool, err := arena.New(alloc)
	if err != nil {
		return err
	}
	idx.pool = pool

	list, err := skiplist.New(pool, idx.text, opts...)
	if err != nil {
		return err
	}
	idx.list = list

	advise := func(seq bool) {
		a, ok := idx.blob.(blobstore.Advisable)
		if !ok || !idx.stats.Mapped {
			return
		}
		var err error
		if seq {
			err = a.AdviseSequential()
		} else {
			err = a.AdviseRandom()
		}
		if err != nil {
			idx.logger.Debug("madvise failed", "source", idx.source, "error", err)
		}
	}

	advise(true)
	defer advise(false)

	text := idx.text
	for off, line := 0, 0; off < len(text); line++ {
		end := bytes.IndexByte(text[off:], '\n')
		if end < 0 {
			end = len(text) - off
		}
		keyLen := end
		if keyLen > 0 && text[off+keyLen-1] == '\r' {
			keyLen--
		}

		if keyLen > 0 {
			ordinal, err := conv.IntToUint32(line)
			if err != nil {
				return err
			}
			inserted, err := list.Insert(off, keyLen, uint64(ordinal))
			if err != nil {
				return err
			}
			if !inserted {
				idx.stats.Duplicates++
			}
		}

		idx.stats.Lines++
		off += end + 1
	}

	ps := pool.Stats()
	idx.stats.Entries = list.Len()
	idx.stats.Levels = list.Level()
	idx.stats.Arenas = ps.Arenas
	idx.stats.ArenaBytes = ps.BytesReserved
	return nil
}

func (idx *Index) mustOpen(op string) {
	if idx.closed {
		panic("dictionary: " + op + " on closed index")
	}
}

// Lookup reports whether key is a dictionary word.
func (idx *Index) Lookup(key []byte) bool {
	idx.mustOpen("lookup")
	return idx.list.Contains(key)
}

// Find returns the zero-based line number at which key first appears.
func (idx *Index) Find(key []byte) (uint32, bool) {
	idx.mustOpen("find")
	ord, ok := idx.list.Find(key)
	return uint32(ord), ok
}

// Len returns the number of distinct words.
func (idx *Index) Len() int {
	idx.mustOpen("len")
	return idx.list.Len()
}

// Each calls fn for every word in ascending byte order until fn returns false.
func (idx *Index) Each(fn func(word []byte, line uint32) bool) {
	idx.mustOpen("each")
	idx.list.Each(func(key []byte, ord uint64) bool {
		return fn(key, uint32(ord))
	})
}

// Stats returns build statistics.
func (idx *Index) Stats() Stats {
	return idx.stats
}

// Source returns the location the index was built from.
func (idx *Index) Source() string {
	return idx.source
}

// Close releases the node arenas, the text buffer and the blob, unmapping
// a mapped file. It is safe to call more than once.
func (idx *Index) Close() error {
	if idx.closed {
		return nil
	}
	idx.closed = true

	var errs []error
	if idx.pool != nil {
		errs = append(errs, idx.pool.Free())
	}
	if idx.buf != nil {
		errs = append(errs, idx.buf.Dispose())
	}
	if idx.blob != nil {
		errs = append(errs, idx.blob.Close())
	}
	idx.list = nil
	idx.pool = nil
	idx.buf = nil
	idx.text = nil
	return errors.Join(errs...)
}
