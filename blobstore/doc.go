// Package blobstore provides read access to immutable blobs such as
// dictionary files, independent of where they are stored.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 with range reads and ranged parallel downloads
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Optional Capabilities
//
// A Blob may implement Mappable when its contents are already addressable
// in memory, and Downloader when it can fill a caller-provided buffer more
// efficiently than a single sequential read.
package blobstore
