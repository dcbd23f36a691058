// Package mmap maps dictionary files and PageMapped buffers.
//
// Open maps a file read-only so the dictionary index can walk its lines in
// place. MapAnon creates the private anonymous regions behind PageMapped
// buffers, whose pages vmsplice(2) can gift to a pipe.
//
//	m, err := mmap.Open("words.txt")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
package mmap
