// Package testutil provides helpers for sharky tests.
//
// This package is intended for use in tests only.
//
//	path := testutil.WriteDictionary(t, "words.txt", "cat", "dog")
//	lines := testutil.Lines(output)
//	words := testutil.NewRNG(1).Words(1000, 3, 8)
package testutil
