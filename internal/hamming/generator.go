package hamming

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/sharky/buffer"
)

const (
	// MaxNameLen is the longest name the generator accepts.
	MaxNameLen = 49
	// MaxDistanceLimit bounds the configurable maximum distance.
	MaxDistanceLimit = 10
	// AlphabetSize is the number of replacement letters.
	AlphabetSize = 26

	firstLetter = 'a'
	lastLetter  = 'z'
)

var (
	// ErrNameTooLong is returned for names longer than MaxNameLen.
	ErrNameTooLong = errors.New("hamming: name too long")
	// ErrDistanceOutOfRange is returned for distances outside 0..MaxDistanceLimit.
	ErrDistanceOutOfRange = errors.New("hamming: distance out of range")
)

// Generator enumerates the neighbours of one name.
type Generator struct {
	name        []byte
	maxDistance int
}

// New creates a Generator for name up to maxDistance substitutions.
func New(name string, maxDistance int) (*Generator, error) {
	if len(name) > MaxNameLen {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrNameTooLong, len(name), MaxNameLen)
	}
	if maxDistance < 0 || maxDistance > MaxDistanceLimit {
		return nil, fmt.Errorf("%w: %d, limit %d", ErrDistanceOutOfRange, maxDistance, MaxDistanceLimit)
	}
	return &Generator{name: []byte(name), maxDistance: maxDistance}, nil
}

// Name returns the input name.
func (g *Generator) Name() string {
	return string(g.name)
}

// MaxDistance returns the configured maximum distance.
func (g *Generator) MaxDistance() int {
	return g.maxDistance
}

// Count returns the number of candidates Each emits, duplicates included.
func (g *Generator) Count() int {
	total := 0
	for d := 1; d <= g.maxDistance && d <= len(g.name); d++ {
		total += CountAt(len(g.name), d)
	}
	return total
}

// CountAt returns the number of candidates at distance d for a name of n
// bytes: C(n, d) * 26^d.
func CountAt(n, d int) int {
	if d < 0 || d > n {
		return 0
	}
	c := 1
	for i := 0; i < d; i++ {
		c = c * (n - i) / (i + 1)
	}
	for i := 0; i < d; i++ {
		c *= AlphabetSize
	}
	return c
}

// Each calls fn for every candidate in generation order. The candidate
// slice is reused between calls. Distances larger than the name have no
// column selection and are skipped. Each stops at the first error.
func (g *Generator) Each(fn func(distance int, candidate []byte) error) error {
	n := len(g.name)
	work := make([]byte, n)
	cols := make([]int, MaxDistanceLimit)
	chars := make([]byte, MaxDistanceLimit)

	for d := 1; d <= g.maxDistance && d <= n; d++ {
		cols := cols[:d]
		for i := range cols {
			cols[i] = i
		}

		for {
			chars := chars[:d]
			for i := range chars {
				chars[i] = firstLetter
			}

			for {
				copy(work, g.name)
				for i, col := range cols {
					work[col] = chars[i]
				}
				if err := fn(d, work); err != nil {
					return err
				}
				if !nextLetters(chars) {
					break
				}
			}

			if !nextColumns(cols, n) {
				break
			}
		}
	}
	return nil
}

// nextColumns advances cols to the next strictly increasing selection of
// len(cols) columns out of n. It reports false after the last selection.
func nextColumns(cols []int, n int) bool {
	d := len(cols)
	i := d - 1
	for i >= 0 && cols[i] == n-d+i {
		i--
	}
	if i < 0 {
		return false
	}
	cols[i]++
	for j := i + 1; j < d; j++ {
		cols[j] = cols[j-1] + 1
	}
	return true
}

// nextLetters advances chars like an odometer over 'a'..'z'.
// It reports false once every position wrapped around.
func nextLetters(chars []byte) bool {
	for j := len(chars) - 1; j >= 0; j-- {
		if chars[j] < lastLetter {
			chars[j]++
			return true
		}
		chars[j] = firstLetter
	}
	return false
}

// Stats summarizes a Run.
type Stats struct {
	// Candidates holds the number of candidates per distance; index 0 is distance 1.
	Candidates []int
	// Transfers counts buffers handed to the Transferer.
	Transfers int
	// BytesTransferred is the total length of the transferred buffers.
	BytesTransferred int64
}

// Total returns the number of candidates over all distances.
func (s Stats) Total() int {
	total := 0
	for _, c := range s.Candidates {
		total += c
	}
	return total
}

// Run serializes every candidate into b, one per line, and hands b to t
// whenever a record does not fit. A dirty buffer is transferred once more
// at the end.
//
// Run returns the buffer the caller owns afterwards: the Transferer may
// replace it. On error the returned buffer may be nil if the failing
// transfer consumed it.
func (g *Generator) Run(ctx context.Context, b *buffer.Buffer, t Transferer) (*buffer.Buffer, Stats, error) {
	stats := Stats{Candidates: make([]int, min(g.maxDistance, len(g.name)))}

	transfer := func() error {
		length := b.Len()
		next, err := t.Transfer(ctx, b)
		b = next
		if err != nil {
			return err
		}
		stats.Transfers++
		stats.BytesTransferred += int64(length)
		return nil
	}

	err := g.Each(func(distance int, candidate []byte) error {
		for {
			err := b.AppendLine(candidate)
			if err == nil {
				stats.Candidates[distance-1]++
				return nil
			}
			if !errors.Is(err, buffer.ErrInsufficientRoom) {
				return err
			}
			if err := transfer(); err != nil {
				return err
			}
		}
	})
	if err != nil {
		return b, stats, err
	}

	if b.Dirty() {
		if err := transfer(); err != nil {
			return b, stats, err
		}
	}
	return b, stats, nil
}
