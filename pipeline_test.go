package sharky_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/sharky"
	"github.com/hupe1980/sharky/blobstore"
	"github.com/hupe1980/sharky/buffer"
	"github.com/hupe1980/sharky/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func outputFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func readOutput(t *testing.T, f *os.File) []string {
	t.Helper()
	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	return testutil.Lines(data)
}

// runPipeline runs p and fails the test if it does not finish in time.
func runPipeline(t *testing.T, p *sharky.Pipeline) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()
	select {
	case err := <-done:
		return err
	case <-time.After(30 * time.Second):
		t.Fatal("pipeline did not finish")
		return nil
	}
}

func count(lines []string, s string) int {
	n := 0
	for _, l := range lines {
		if l == s {
			n++
		}
	}
	return n
}

func TestPipeline_PassThrough(t *testing.T) {
	tests := []struct {
		name string
		opts []sharky.Option
	}{
		{name: "default"},
		{name: "aligned copy", opts: []sharky.Option{
			sharky.WithWriterStrategy(buffer.PageAlignedHeap),
			sharky.WithAllocator(buffer.NewAllocator(buffer.WithPageSize(64))),
		}},
		{name: "heap copy", opts: []sharky.Option{
			sharky.WithWriterStrategy(buffer.GenericHeap),
		}},
		{name: "mapped", opts: []sharky.Option{
			sharky.WithWriterStrategy(buffer.PageMapped),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := outputFile(t)
			opts := append([]sharky.Option{sharky.WithLogger(sharky.NoopLogger())}, tt.opts...)
			p, err := sharky.New(sharky.Config{MaxDistance: 1, Name: "cat", Output: out}, opts...)
			require.NoError(t, err)

			require.NoError(t, runPipeline(t, p))

			lines := readOutput(t, out)
			require.Len(t, lines, 78)
			assert.Equal(t, "aat", lines[0])
			assert.Equal(t, "caz", lines[77])
			assert.Equal(t, 3, count(lines, "cat"))
			for _, l := range lines {
				assert.Len(t, l, 3)
			}
		})
	}
}

func TestPipeline_ZeroDistance(t *testing.T) {
	out := outputFile(t)
	p, err := sharky.New(sharky.Config{MaxDistance: 0, Name: "cat", Output: out},
		sharky.WithLogger(sharky.NoopLogger()))
	require.NoError(t, err)

	require.NoError(t, runPipeline(t, p))
	assert.Empty(t, readOutput(t, out))
}

func TestPipeline_Dictionary(t *testing.T) {
	dict := testutil.WriteDictionary(t, "words.txt", "dog", "bat", "cot", "cat", "zebra")
	out := outputFile(t)
	metrics := &sharky.BasicMetricsCollector{}

	p, err := sharky.New(sharky.Config{MaxDistance: 1, Name: "cat", DictionaryPath: dict, Output: out},
		sharky.WithLogger(sharky.NoopLogger()),
		sharky.WithMetricsCollector(metrics))
	require.NoError(t, err)

	require.NoError(t, runPipeline(t, p))
	assert.Equal(t, []string{"bat", "cat", "cat", "cot", "cat"}, readOutput(t, out))

	filter, ok := p.Reader().(*sharky.DictionaryFilter)
	require.True(t, ok)
	assert.Equal(t, sharky.FilterStats{Checked: 78, Hits: 5, Distinct: 3}, filter.Stats())

	stats := metrics.GetStats()
	assert.Equal(t, int64(78), stats.Candidates)
	assert.Equal(t, int64(78), stats.LookupCount)
	assert.Equal(t, int64(5), stats.LookupHits)
	assert.Positive(t, stats.TransferCount)
	assert.Zero(t, stats.TransferErrors)
	assert.Equal(t, stats.TransferCount*int64(os.Getpagesize()), stats.TransferBytes)
}

func TestPipeline_CompressedDictionary(t *testing.T) {
	dict := testutil.WriteDictionary(t, "words.txt.zst", "bat", "hat")
	out := outputFile(t)

	p, err := sharky.New(sharky.Config{MaxDistance: 1, Name: "cat", DictionaryPath: dict, Output: out},
		sharky.WithLogger(sharky.NoopLogger()),
		sharky.WithAllocator(buffer.NewAllocator(buffer.WithPageSize(64))),
		sharky.WithWriterStrategy(buffer.PageAlignedHeap))
	require.NoError(t, err)

	require.NoError(t, runPipeline(t, p))
	assert.Equal(t, []string{"bat", "hat"}, readOutput(t, out))
}

func TestPipeline_MissingDictionary(t *testing.T) {
	out := outputFile(t)
	p, err := sharky.New(sharky.Config{
		MaxDistance:    3,
		Name:           "sharky",
		DictionaryPath: filepath.Join(t.TempDir(), "missing.txt"),
		Output:         out,
	}, sharky.WithLogger(sharky.NoopLogger()))
	require.NoError(t, err)

	err = runPipeline(t, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	assert.Equal(t, sharky.ExitReaderFailed, sharky.ExitCode(err))
}

func TestPipeline_ReaderFailureEndsWriter(t *testing.T) {
	out := outputFile(t)
	reader := sharky.WorkerFunc(func(context.Context, int) error {
		return &sharky.StatusError{Status: 7}
	})

	// Enough output to fill the pipe many times over.
	p, err := sharky.New(sharky.Config{MaxDistance: 3, Name: "sharky", Output: out},
		sharky.WithLogger(sharky.NoopLogger()),
		sharky.WithReader(reader))
	require.NoError(t, err)

	err = runPipeline(t, p)
	require.Error(t, err)

	var we *sharky.WorkerError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, sharky.RoleReader, we.Role)

	var se *sharky.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 7, se.Status)
	assert.Equal(t, sharky.ExitReaderFailed, sharky.ExitCode(err))
}

func TestPipeline_WriterFailure(t *testing.T) {
	out := outputFile(t)
	drain := sharky.WorkerFunc(func(_ context.Context, fd int) error {
		p := make([]byte, 512)
		for {
			n, err := unix.Read(fd, p)
			if err == unix.EINTR {
				continue
			}
			if err != nil {
				return err
			}
			if n == 0 {
				return nil
			}
		}
	})

	p, err := sharky.New(sharky.Config{MaxDistance: 1, Name: "cat", Output: out},
		sharky.WithLogger(sharky.NoopLogger()),
		sharky.WithResourceLimits(sharky.ResourceLimits{MemoryBytes: 16}),
		sharky.WithReader(drain))
	require.NoError(t, err)

	err = runPipeline(t, p)
	require.Error(t, err)

	var we *sharky.WorkerError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, sharky.RoleWriter, we.Role)
	assert.Equal(t, sharky.ExitFatal, sharky.ExitCode(err))
}

func TestPipeline_ReaderPanic(t *testing.T) {
	out := outputFile(t)
	reader := sharky.WorkerFunc(func(context.Context, int) error {
		panic("boom")
	})

	p, err := sharky.New(sharky.Config{MaxDistance: 1, Name: "cat", Output: out},
		sharky.WithLogger(sharky.NoopLogger()),
		sharky.WithReader(reader))
	require.NoError(t, err)

	err = runPipeline(t, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, sharky.ExitReaderFailed, sharky.ExitCode(err))
}

func TestPipeline_IOLimit(t *testing.T) {
	out := outputFile(t)
	p, err := sharky.New(sharky.Config{MaxDistance: 1, Name: "cat", Output: out},
		sharky.WithLogger(sharky.NoopLogger()),
		sharky.WithResourceLimits(sharky.ResourceLimits{IOBytesPerSec: 1 << 20}))
	require.NoError(t, err)

	require.NoError(t, runPipeline(t, p))
	assert.Len(t, readOutput(t, out), 78)
	assert.Positive(t, p.MemoryPeak())
}

func TestPipeline_Logging(t *testing.T) {
	var logs bytes.Buffer
	logger := sharky.NewLogger(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	out := outputFile(t)

	p, err := sharky.New(sharky.Config{MaxDistance: 1, Name: "cat", Output: out}, sharky.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, runPipeline(t, p))

	text := logs.String()
	assert.Contains(t, text, `"msg":"pipeline started"`)
	assert.Contains(t, text, `"msg":"generation completed"`)
	assert.Contains(t, text, `"candidates":78`)
	assert.Equal(t, 2, strings.Count(text, `"msg":"worker finished"`))
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  sharky.Config
	}{
		{name: "negative distance", cfg: sharky.Config{MaxDistance: -1, Name: "cat"}},
		{name: "distance too large", cfg: sharky.Config{MaxDistance: 11, Name: "cat"}},
		{name: "empty name", cfg: sharky.Config{MaxDistance: 1}},
		{name: "name too long", cfg: sharky.Config{MaxDistance: 1, Name: strings.Repeat("a", 50)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sharky.New(tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, sharky.ErrInvalidConfig)
			assert.Equal(t, sharky.ExitConfig, sharky.ExitCode(err))
		})
	}

	_, err := sharky.New(sharky.Config{MaxDistance: 1, Name: "cat"}, sharky.WithWriterStrategy(buffer.Unallocated))
	assert.ErrorIs(t, err, sharky.ErrInvalidConfig)
}

func TestNew_Bounds(t *testing.T) {
	_, err := sharky.New(sharky.Config{MaxDistance: 10, Name: strings.Repeat("a", 49)})
	assert.NoError(t, err)
}
