package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/hupe1980/sharky/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store opens dictionary objects from a MinIO or other S3-compatible bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore wraps an existing client. prefix is joined in front of every
// object name, e.g. "dictionaries/".
func NewStore(client *minio.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// NewFromEnv connects to endpoint using MINIO_ACCESS_KEY and
// MINIO_SECRET_KEY (or MINIO_ROOT_USER and MINIO_ROOT_PASSWORD).
func NewFromEnv(endpoint, bucket string, secure bool) (*Store, error) {
	if endpoint == "" || bucket == "" {
		return nil, fmt.Errorf("minio: endpoint and bucket are required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewEnvMinio(),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: client for %s: %w", endpoint, err)
	}
	return NewStore(client, bucket, ""), nil
}

func (s *Store) objectKey(name string) string {
	return path.Join(s.prefix, name)
}

// Open stats the object. Later reads are pinned to the ETag seen here, so a
// dictionary replaced mid-load fails instead of mixing two versions.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.objectKey(name)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: minio %s/%s", blobstore.ErrNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("minio: stat %s/%s: %w", s.bucket, key, err)
	}

	return &object{store: s, key: key, etag: info.ETag, size: info.Size}, nil
}

func notFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		return true
	}
	return false
}

type object struct {
	store *Store
	key   string
	etag  string
	size  int64
}

func (o *object) Size() int64 { return o.size }

func (o *object) Close() error { return nil }

func (o *object) get(ctx context.Context, off, end int64) (*minio.Object, error) {
	opts := minio.GetObjectOptions{}
	if o.etag != "" {
		if err := opts.SetMatchETag(o.etag); err != nil {
			return nil, err
		}
	}
	if err := opts.SetRange(off, end); err != nil {
		return nil, err
	}

	obj, err := o.store.client.GetObject(ctx, o.store.bucket, o.key, opts)
	if err != nil {
		return nil, fmt.Errorf("minio: get %s/%s: %w", o.store.bucket, o.key, err)
	}
	return obj, nil
}

func (o *object) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 || length < 0 {
		return nil, fmt.Errorf("minio: invalid range %d+%d", off, length)
	}
	if off >= o.size {
		return nil, io.EOF
	}
	return o.get(ctx, off, min(off+length, o.size)-1)
}

// Download implements blobstore.Downloader with a single streamed request.
func (o *object) Download(ctx context.Context, dst []byte) (int64, error) {
	if int64(len(dst)) < o.size {
		return 0, fmt.Errorf("minio: destination holds %d bytes, object has %d", len(dst), o.size)
	}
	if o.size == 0 {
		return 0, nil
	}

	obj, err := o.get(ctx, 0, o.size-1)
	if err != nil {
		return 0, err
	}
	defer func() { _ = obj.Close() }()

	n, err := io.ReadFull(obj, dst[:o.size])
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = fmt.Errorf("minio: %s/%s: short read %d of %d bytes", o.store.bucket, o.key, n, o.size)
	}
	return int64(n), err
}
