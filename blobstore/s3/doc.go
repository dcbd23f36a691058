// Package s3 provides an Amazon S3 implementation of the
// blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("dictionaries/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	blob, err := store.Open(ctx, "words.txt")
//
// # Features
//
//   - Range reads for partial fetches
//   - Parallel ranged downloads straight into a caller buffer
//   - Custom endpoints for S3-compatible services
package s3
