package skiplist

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/hupe1980/sharky/internal/arena"
)

// MaxLevel is the number of links in the head node.
const MaxLevel = 30

// ErrKeyOutOfRange is returned when a key does not lie inside the text.
var ErrKeyOutOfRange = errors.New("skiplist: key outside text")

// List is an ordered set of keys. It is not safe for concurrent use; after
// construction it may be read concurrently as long as nothing inserts.
type List struct {
	pool     *arena.Pool
	text     []byte
	head     arena.Ref
	sentinel arena.Ref
	level    int // highest level in use, at least 1
	length   int
	rng      *rand.Rand
}

// Option configures a List.
type Option func(*options)

type options struct {
	seed    uint64
	hasSeed bool
}

// WithSeed makes level promotion deterministic.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}

// New creates an empty list over text, allocating the head and sentinel
// from pool. Every head link points at the sentinel.
func New(pool *arena.Pool, text []byte, opts ...Option) (*List, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasSeed {
		o.seed = rand.Uint64()
	}

	headRef, head, err := allocNode(pool, MaxLevel, 0)
	if err != nil {
		return nil, fmt.Errorf("skiplist: head: %w", err)
	}
	sentinel, _, err := allocNode(pool, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("skiplist: sentinel: %w", err)
	}
	for i := 0; i < MaxLevel; i++ {
		head.setLink(i, sentinel)
	}

	return &List{
		pool:     pool,
		text:     text,
		head:     headRef,
		sentinel: sentinel,
		level:    1,
		rng:      rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Len returns the number of keys.
func (l *List) Len() int { return l.length }

// Level returns the highest level in use.
func (l *List) Level() int { return l.level }

func (l *List) node(ref arena.Ref) node {
	hdr := node(l.pool.MustBytes(ref, headerWords*wordSize))
	return node(l.pool.MustBytes(ref, nodeSize(hdr.linkCount(), hdr.dataCount())))
}

func (l *List) key(n node) []byte {
	off, size := n.data(dataKeyOffset), n.data(dataKeyLen)
	return l.text[off : off+size]
}

// randomLevel draws a level in [1, MaxLevel] with P(level > k) = 2^-k.
func (l *List) randomLevel() int {
	level := 1
	for level < MaxLevel && l.rng.Uint64()&1 == 1 {
		level++
	}
	return level
}

// seek fills update with the last node before key on every level and
// returns the level-0 successor, which is the first node whose key is not
// less than key.
func (l *List) seek(key []byte, update *[MaxLevel]node) arena.Ref {
	x := l.node(l.head)
	for i := l.level - 1; i >= 0; i-- {
		for {
			next := x.link(i)
			if next == l.sentinel {
				break
			}
			nn := l.node(next)
			if bytes.Compare(l.key(nn), key) >= 0 {
				break
			}
			x = nn
		}
		if update != nil {
			update[i] = x
		}
	}
	return x.link(0)
}

// Insert adds the key text[offset:offset+length] with its ordinal.
// It reports false, leaving the list unchanged, if the key is present.
func (l *List) Insert(offset, length int, ordinal uint64) (bool, error) {
	if offset < 0 || length < 0 || offset+length > len(l.text) {
		return false, fmt.Errorf("%w: [%d:%d] of %d", ErrKeyOutOfRange, offset, offset+length, len(l.text))
	}
	key := l.text[offset : offset+length]

	var update [MaxLevel]node
	next := l.seek(key, &update)
	if next != l.sentinel && bytes.Equal(l.key(l.node(next)), key) {
		return false, nil
	}

	level := l.randomLevel()
	if level > l.level {
		head := l.node(l.head)
		for i := l.level; i < level; i++ {
			update[i] = head
		}
		l.level = level
	}

	ref, n, err := allocNode(l.pool, level, keyDataWords)
	if err != nil {
		return false, fmt.Errorf("skiplist: node: %w", err)
	}
	n.setData(dataKeyOffset, uint64(offset))
	n.setData(dataKeyLen, uint64(length))
	n.setData(dataOrdinal, ordinal)

	for i := 0; i < level; i++ {
		n.setLink(i, update[i].link(i))
		update[i].setLink(i, ref)
	}
	l.length++
	return true, nil
}

// Find returns the ordinal stored with key.
func (l *List) Find(key []byte) (uint64, bool) {
	next := l.seek(key, nil)
	if next == l.sentinel {
		return 0, false
	}
	n := l.node(next)
	if !bytes.Equal(l.key(n), key) {
		return 0, false
	}
	return n.data(dataOrdinal), true
}

// Contains reports whether key is in the list.
func (l *List) Contains(key []byte) bool {
	_, ok := l.Find(key)
	return ok
}

// Each calls fn for every key in ascending order until fn returns false.
func (l *List) Each(fn func(key []byte, ordinal uint64) bool) {
	for ref := l.node(l.head).link(0); ref != l.sentinel; {
		n := l.node(ref)
		if !fn(l.key(n), n.data(dataOrdinal)) {
			return
		}
		ref = n.link(0)
	}
}
