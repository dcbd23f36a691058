// Package hamming enumerates Hamming-distance neighbours of a name.
//
// For every distance d from 1 to the configured maximum, the generator
// walks all strictly increasing selections of d columns in lexicographic
// order and, for each selection, every combination of d replacement
// letters 'a'..'z' in odometer order (rightmost column fastest). Each
// combination overwrites the selected columns of a copy of the name.
//
// Replacement letters may equal the original letter, so the name itself and
// repeated candidates are emitted. Callers that need unique output dedupe
// downstream.
//
// Only substitutions are generated; there are no insertions or deletions.
package hamming
