package skiplist

import (
	"encoding/binary"

	"github.com/hupe1980/sharky/internal/arena"
)

const (
	wordSize    = 8
	headerWords = 2

	// Data words of a key node.
	dataKeyOffset = 0
	dataKeyLen    = 1
	dataOrdinal   = 2
	keyDataWords  = 3
)

// node is a view over a node's arena memory.
type node []byte

func nodeSize(links, data int) int {
	return (headerWords + links + data) * wordSize
}

func (n node) word(i int) uint64 {
	return binary.LittleEndian.Uint64(n[i*wordSize:])
}

func (n node) setWord(i int, v uint64) {
	binary.LittleEndian.PutUint64(n[i*wordSize:], v)
}

func (n node) linkCount() int { return int(n.word(0)) }
func (n node) dataCount() int { return int(n.word(1)) }

func (n node) link(level int) arena.Ref {
	return arena.Ref(n.word(headerWords + level))
}

func (n node) setLink(level int, ref arena.Ref) {
	n.setWord(headerWords+level, uint64(ref))
}

func (n node) data(i int) uint64 {
	return n.word(headerWords + n.linkCount() + i)
}

func (n node) setData(i int, v uint64) {
	n.setWord(headerWords+n.linkCount()+i, v)
}

// allocNode allocates a node and writes its header.
func allocNode(p *arena.Pool, links, data int) (arena.Ref, node, error) {
	ref, mem, err := p.Alloc(nodeSize(links, data))
	if err != nil {
		return arena.Nil, nil, err
	}
	n := node(mem)
	n.setWord(0, uint64(links))
	n.setWord(1, uint64(data))
	return ref, n, nil
}
