// Package dictionary provides a read-only membership index over a
// newline-separated word list.
//
// The word list is loaded from a local file (memory-mapped), a compressed
// local file (.zst, .gz, .lz4), Amazon S3 (s3://bucket/key), MinIO
// (minio://endpoint/bucket/key, minios:// for TLS) or any
// blobstore.BlobStore. Every non-empty line becomes a key of a skiplist
// whose nodes are bump-allocated from an arena pool; keys reference the
// loaded text and are never copied.
//
// An Index is built once and may then be queried from multiple goroutines.
//
//	idx, err := dictionary.Open(ctx, "words.txt")
//	if err != nil {
//	    return err
//	}
//	defer idx.Close()
//
//	ok := idx.Lookup([]byte("dog"))
package dictionary
