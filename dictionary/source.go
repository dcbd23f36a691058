package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/hupe1980/sharky/blobstore"
	"github.com/hupe1980/sharky/blobstore/minio"
	"github.com/hupe1980/sharky/blobstore/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrUnsupportedSource is returned for locations Open cannot resolve.
var ErrUnsupportedSource = errors.New("dictionary: unsupported source")

// Codec identifies the compression of a dictionary blob.
type Codec int

const (
	CodecNone Codec = iota
	CodecZstd
	CodecGzip
	CodecLZ4
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	case CodecGzip:
		return "gzip"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("codec(%d)", int(c))
	}
}

// CodecFor picks the codec from a blob name's extension.
func CodecFor(name string) Codec {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst", ".zstd":
		return CodecZstd
	case ".gz", ".gzip":
		return CodecGzip
	case ".lz4":
		return CodecLZ4
	default:
		return CodecNone
	}
}

// decoder wraps r in the codec's decompressor.
func (c Codec) decoder(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CodecNone:
		return io.NopCloser(r), nil
	case CodecZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case CodecGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: codec %s", ErrUnsupportedSource, c)
	}
}

// location is a parsed dictionary source.
type location struct {
	scheme   string // "", "s3", "minio", "minios"
	endpoint string // minio only
	bucket   string
	name     string
}

func parseLocation(src string) (location, error) {
	scheme, rest, ok := strings.Cut(src, "://")
	if !ok {
		if src == "" {
			return location{}, fmt.Errorf("%w: empty path", ErrUnsupportedSource)
		}
		return location{name: src}, nil
	}

	parts := strings.SplitN(rest, "/", 3)
	switch scheme {
	case "s3":
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return location{}, fmt.Errorf("%w: want s3://bucket/key, got %q", ErrUnsupportedSource, src)
		}
		return location{scheme: scheme, bucket: bucket, name: key}, nil
	case "minio", "minios":
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return location{}, fmt.Errorf("%w: want %s://endpoint/bucket/key, got %q", ErrUnsupportedSource, scheme, src)
		}
		return location{scheme: scheme, endpoint: parts[0], bucket: parts[1], name: parts[2]}, nil
	default:
		return location{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, scheme)
	}
}

// store returns the BlobStore serving loc.
func (loc location) store(ctx context.Context) (blobstore.BlobStore, error) {
	switch loc.scheme {
	case "":
		return blobstore.NewLocalStore(""), nil
	case "s3":
		return s3.New(ctx, loc.bucket)
	case "minio", "minios":
		return minio.NewFromEnv(loc.endpoint, loc.bucket, loc.scheme == "minios")
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, loc.scheme)
	}
}
