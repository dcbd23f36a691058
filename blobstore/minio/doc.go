// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage system. This package uses the
// official MinIO Go client library, so it also works with Ceph, SeaweedFS,
// Garage and similar services.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "dictionaries/")
//	blob, err := store.Open(ctx, "words.txt")
//
// NewFromEnv builds the client from MINIO_ROOT_USER/MINIO_ROOT_PASSWORD or
// MINIO_ACCESS_KEY/MINIO_SECRET_KEY.
package minio
