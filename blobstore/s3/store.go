package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hupe1980/sharky/blobstore"
)

// Client is the subset of the S3 API the store uses. *s3.Client satisfies it.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// DownloadConfig tunes ranged parallel downloads.
type DownloadConfig struct {
	// PartSize is the size of each ranged GET. Default: manager.DefaultDownloadPartSize.
	PartSize int64
	// Concurrency is the number of parallel GETs. Default: manager.DefaultDownloadConcurrency.
	Concurrency int
}

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	download DownloadConfig
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "dictionaries/").
func NewStore(client Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
		download: DownloadConfig{
			PartSize:    manager.DefaultDownloadPartSize,
			Concurrency: manager.DefaultDownloadConcurrency,
		},
	}
}

type options struct {
	prefix   string
	region   string
	endpoint string
	download DownloadConfig
}

// Option configures New.
type Option func(*options)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion overrides the region from the shared configuration.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint targets an S3-compatible endpoint using path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithDownloadConfig overrides the download tuning.
func WithDownloadConfig(cfg DownloadConfig) Option {
	return func(o *options) { o.download = cfg }
}

// New creates a Store using the default AWS credential chain.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	o := options{}
	for _, fn := range optFns {
		fn(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	})

	s := NewStore(client, bucket, o.prefix)
	if o.download.PartSize > 0 {
		s.download.PartSize = o.download.PartSize
	}
	if o.download.Concurrency > 0 {
		s.download.Concurrency = o.download.Concurrency
	}
	return s, nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open checks that the object exists and records its size and ETag. Later
// reads require the same ETag, so a dictionary replaced mid-load fails
// instead of mixing two versions.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", blobstore.ErrNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("s3: head s3://%s/%s: %w", s.bucket, key, err)
	}

	return &s3Blob{
		client:   s.client,
		bucket:   s.bucket,
		key:      key,
		etag:     head.ETag,
		size:     aws.ToInt64(head.ContentLength),
		download: s.download,
	}, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

// s3Blob implements blobstore.Blob and blobstore.Downloader.
type s3Blob struct {
	client   Client
	bucket   string
	key      string
	etag     *string
	size     int64
	download DownloadConfig
}

func (b *s3Blob) Close() error {
	return nil
}

func (b *s3Blob) Size() int64 {
	return b.size
}

func (b *s3Blob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 || length < 0 {
		return nil, fmt.Errorf("s3: invalid range %d+%d", off, length)
	}
	if off >= b.size {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	end := min(off+length, b.size) - 1
	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket:  aws.String(b.bucket),
		Key:     aws.String(b.key),
		IfMatch: b.etag,
		Range:   aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: get s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return resp.Body, nil
}

// Download fetches the object with parallel ranged GETs written straight
// into dst.
func (b *s3Blob) Download(ctx context.Context, dst []byte) (int64, error) {
	if int64(len(dst)) < b.size {
		return 0, fmt.Errorf("s3: destination holds %d bytes, object has %d", len(dst), b.size)
	}

	d := manager.NewDownloader(b.client, func(d *manager.Downloader) {
		d.PartSize = b.download.PartSize
		d.Concurrency = b.download.Concurrency
	})

	n, err := d.Download(ctx, manager.NewWriteAtBuffer(dst[:b.size]), &s3.GetObjectInput{
		Bucket:  aws.String(b.bucket),
		Key:     aws.String(b.key),
		IfMatch: b.etag,
	})
	if err != nil {
		return n, fmt.Errorf("s3: download s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return n, nil
}
