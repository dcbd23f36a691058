package hamming

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hupe1980/sharky/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureTransfer keeps a copy of every transferred chunk and reuses the buffer.
type captureTransfer struct {
	chunks [][]byte
	fail   error
}

func (c *captureTransfer) Transfer(_ context.Context, b *buffer.Buffer) (*buffer.Buffer, error) {
	if c.fail != nil {
		return b, c.fail
	}
	c.chunks = append(c.chunks, bytes.Clone(b.Bytes()))
	b.Wipe()
	return b, nil
}

func (c *captureTransfer) lines() []string {
	var out []string
	for _, chunk := range c.chunks {
		text := string(bytes.TrimRight(chunk, "\x00"))
		out = append(out, strings.Split(strings.TrimSuffix(text, "\n"), "\n")...)
	}
	return out
}

func collect(t *testing.T, g *Generator) []string {
	t.Helper()
	var out []string
	require.NoError(t, g.Each(func(_ int, c []byte) error {
		out = append(out, string(c))
		return nil
	}))
	return out
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

func TestGenerator_CatDistanceOne(t *testing.T) {
	g, err := New("cat", 1)
	require.NoError(t, err)

	lines := collect(t, g)
	require.Len(t, lines, 3*26)
	assert.Equal(t, 78, g.Count())

	assert.Equal(t, "aat", lines[0])
	assert.Equal(t, "bat", lines[1])
	assert.Equal(t, "zat", lines[25])
	assert.Equal(t, "cat", lines[26], "second column starts at 'a'")
	assert.Equal(t, "caz", lines[77])

	// Replacement letters may equal the original: the input shows up once per column.
	assert.Contains(t, lines, "cat")
	assert.Equal(t, 3, count(lines, "cat"))
}

func TestGenerator_DistanceTwoOrder(t *testing.T) {
	g, err := New("cat", 2)
	require.NoError(t, err)

	lines := collect(t, g)
	require.Len(t, lines, 78+3*26*26)

	d2 := lines[78:]
	// Columns (0,1), rightmost letter fastest
	assert.Equal(t, []string{"aat", "abt", "act"}, d2[:3])
	assert.Equal(t, "azt", d2[25])
	assert.Equal(t, "bat", d2[26])
	assert.Equal(t, "zzt", d2[675])
	// Then columns (0,2), then (1,2)
	assert.Equal(t, "aaa", d2[676])
	assert.Equal(t, "caa", d2[2*676])
	assert.Equal(t, "czz", d2[3*676-1])
}

func TestGenerator_ColumnSelections(t *testing.T) {
	cols := []int{0, 1}
	var seen [][]int
	for {
		seen = append(seen, append([]int(nil), cols...))
		if !nextColumns(cols, 4) {
			break
		}
	}
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, seen)
}

func TestGenerator_Odometer(t *testing.T) {
	chars := []byte("az")
	require.True(t, nextLetters(chars))
	assert.Equal(t, "ba", string(chars))

	chars = []byte("zz")
	assert.False(t, nextLetters(chars))
	assert.Equal(t, "aa", string(chars))
}

func TestGenerator_ZeroDistance(t *testing.T) {
	g, err := New("cat", 0)
	require.NoError(t, err)
	assert.Empty(t, collect(t, g))
	assert.Zero(t, g.Count())
}

func TestGenerator_DistanceBeyondNameLength(t *testing.T) {
	g, err := New("ab", 5)
	require.NoError(t, err)

	lines := collect(t, g)
	assert.Len(t, lines, 2*26+26*26)
	assert.Equal(t, len(lines), g.Count())
}

func TestGenerator_Validation(t *testing.T) {
	_, err := New(strings.Repeat("x", MaxNameLen+1), 1)
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, err = New("cat", MaxDistanceLimit+1)
	assert.ErrorIs(t, err, ErrDistanceOutOfRange)

	_, err = New("cat", -1)
	assert.ErrorIs(t, err, ErrDistanceOutOfRange)

	g, err := New(strings.Repeat("x", MaxNameLen), MaxDistanceLimit)
	require.NoError(t, err)
	assert.Equal(t, MaxDistanceLimit, g.MaxDistance())
}

func TestCountAt(t *testing.T) {
	assert.Equal(t, 78, CountAt(3, 1))
	assert.Equal(t, 3*676, CountAt(3, 2))
	assert.Equal(t, 26*26*26, CountAt(3, 3))
	assert.Zero(t, CountAt(3, 4))
	assert.Equal(t, 1, CountAt(3, 0))
}

func TestGenerator_RunTransfersWholeRecords(t *testing.T) {
	alloc := buffer.NewAllocator(buffer.WithPageSize(64))
	b, err := alloc.New(buffer.PageAlignedHeap, 64)
	require.NoError(t, err)

	g, err := New("cat", 2)
	require.NoError(t, err)

	ct := &captureTransfer{}
	b, stats, err := g.Run(context.Background(), b, ct)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.False(t, b.Dirty())

	// 64 bytes hold 16 four-byte records
	assert.Equal(t, []int{78, 2028}, stats.Candidates)
	assert.Equal(t, 78+2028, stats.Total())
	assert.Equal(t, (78+2028+15)/16, stats.Transfers)
	assert.Equal(t, int64(stats.Transfers*64), stats.BytesTransferred)

	for _, chunk := range ct.chunks {
		assert.Len(t, chunk, 64)
		assert.True(t, bytes.HasSuffix(bytes.TrimRight(chunk, "\x00"), []byte("\n")),
			"chunks end on a record boundary")
	}

	want := collect(t, g)
	assert.Equal(t, want, ct.lines())
}

func TestGenerator_RunUnevenRecords(t *testing.T) {
	alloc := buffer.NewAllocator(buffer.WithPageSize(64))
	b, err := alloc.New(buffer.GenericHeap, 64)
	require.NoError(t, err)

	// Seven-byte records leave one byte of padding per chunk
	g, err := New("sharky", 1)
	require.NoError(t, err)

	ct := &captureTransfer{}
	_, stats, err := g.Run(context.Background(), b, ct)
	require.NoError(t, err)
	assert.Equal(t, 6*26, stats.Total())

	for _, chunk := range ct.chunks[:len(ct.chunks)-1] {
		assert.Equal(t, make([]byte, 1), chunk[63:], "padding is zeroed")
	}
	assert.Equal(t, collect(t, g), ct.lines())
}

func TestGenerator_RunNothingToSend(t *testing.T) {
	alloc := buffer.NewAllocator()
	b, err := alloc.New(buffer.GenericHeap, alloc.PageSize())
	require.NoError(t, err)

	g, err := New("cat", 0)
	require.NoError(t, err)

	ct := &captureTransfer{}
	_, stats, err := g.Run(context.Background(), b, ct)
	require.NoError(t, err)
	assert.Empty(t, ct.chunks)
	assert.Zero(t, stats.Transfers)
}

func TestGenerator_RunTransferError(t *testing.T) {
	alloc := buffer.NewAllocator(buffer.WithPageSize(64))
	b, err := alloc.New(buffer.GenericHeap, 64)
	require.NoError(t, err)

	g, err := New("cat", 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, _, err = g.Run(context.Background(), b, &captureTransfer{fail: boom})
	assert.ErrorIs(t, err, boom)
}

func TestGenerator_RunRecordTooLarge(t *testing.T) {
	alloc := buffer.NewAllocator(buffer.WithPageSize(64))
	b, err := alloc.New(buffer.GenericHeap, 4)
	require.NoError(t, err)

	g, err := New("sharky", 1)
	require.NoError(t, err)

	_, _, err = g.Run(context.Background(), b, &captureTransfer{})
	assert.ErrorIs(t, err, buffer.ErrRecordTooLarge)
}
