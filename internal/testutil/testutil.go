package testutil

import (
	"bytes"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

// WriteDictionary writes lines, each terminated by '\n', to name inside a
// fresh temporary directory and returns the path.
func WriteDictionary(t testing.TB, name string, lines ...string) string {
	t.Helper()
	return WriteFile(t, name, []byte(Join(lines...)))
}

// WriteFile writes data to name inside a fresh temporary directory. A name
// ending in .zst, .gz or .lz4 is compressed accordingly.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, Compress(t, filepath.Ext(name), data), 0o600))
	return path
}

// Join terminates every line with '\n'.
func Join(lines ...string) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Lines splits newline-terminated output into records. Zero padding is
// dropped.
func Lines(out []byte) []string {
	out = bytes.ReplaceAll(out, []byte{0}, nil)
	if len(out) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
}

// Compress encodes data for the given file extension. Unknown extensions
// return data unchanged.
func Compress(t testing.TB, ext string, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	switch ext {
	case ".zst":
		w, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case ".gz":
		w := gzip.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case ".lz4":
		w := lz4.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	default:
		return data
	}
	return buf.Bytes()
}

// RNG is a seeded, thread-safe random source for reproducible fixtures.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed uint64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// IntN returns a pseudo-random number in [0,n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Word returns a random lowercase word of length n.
func (r *RNG) Word(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + r.rand.IntN(26))
	}
	return string(b)
}

// Words returns count random words with lengths in [minLen, maxLen].
func (r *RNG) Words(count, minLen, maxLen int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = r.Word(minLen + r.IntN(maxLen-minLen+1))
	}
	return out
}
