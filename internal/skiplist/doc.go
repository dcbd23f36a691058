// Package skiplist implements an ordered set of byte-string keys whose
// nodes live in arena memory.
//
// Keys are not copied. A node stores the offset and length of its key in an
// immutable text (typically a mapped dictionary file) plus an ordinal.
//
// Node layout, in little-endian 64-bit words:
//
//	[0]               link count L
//	[1]               data count D
//	[2 .. 2+L)        forward links (arena.Ref), level 0 first
//	[2+L .. 2+L+D)    data: key offset, key length, ordinal
//
// The head node carries MaxLevel links and no data; the sentinel carries
// neither and terminates every level.
package skiplist
