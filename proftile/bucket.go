package proftile

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
)

// Bucket is a storage abstraction over an archive directory: a tree of
// small whole objects, one per (entry, tile) archive member plus the root
// "info" file. Reads and writes address whole objects rather than byte
// ranges, since archive tiles are small, discrete files.
type Bucket interface {
	NewReader(ctx context.Context, key string) (io.ReadCloser, error)
	NewWriter(ctx context.Context, key string) (io.WriteCloser, error)
	Close() error
}

// blobBucket adapts a gocloud.dev/blob.Bucket (local file://, s3://, gs://,
// azblob://, ...) to the Bucket interface.
type blobBucket struct {
	bucket *blob.Bucket
}

func (b blobBucket) NewReader(ctx context.Context, key string) (io.ReadCloser, error) {
	return b.bucket.NewReader(ctx, key, nil)
}

func (b blobBucket) NewWriter(ctx context.Context, key string) (io.WriteCloser, error) {
	return b.bucket.NewWriter(ctx, key, nil)
}

func (b blobBucket) Close() error {
	return b.bucket.Close()
}

// HTTPBucket reads tiles from a plain HTTP(S) server via GET, letting an
// ArchiveReader operate over a read-only HTTP mirror of an archive. Writes
// are unsupported.
type HTTPBucket struct {
	BaseURL string
	Client  *http.Client
}

func (b HTTPBucket) NewReader(ctx context.Context, key string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+"/"+key, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &httpStatusError{url: req.URL.String(), status: resp.StatusCode}
	}
	return resp.Body, nil
}

func (b HTTPBucket) NewWriter(ctx context.Context, key string) (io.WriteCloser, error) {
	return nil, errHTTPBucketReadOnly
}

func (b HTTPBucket) Close() error { return nil }

type httpStatusError struct {
	url    string
	status int
}

func (e *httpStatusError) Error() string {
	return "unexpected HTTP status fetching " + e.url
}

var errHTTPBucketReadOnly = errors.New("HTTPBucket does not support writes")

// OpenBucket dispatches bucketURL to the right Bucket implementation: a
// bare local path or file:// URL opens a fileblob bucket, http(s):// opens
// an HTTPBucket, anything else is handed to gocloud.dev/blob directly
// (s3://, gs://, azblob://, and any other registered driver).
func OpenBucket(ctx context.Context, bucketURL string) (Bucket, error) {
	if strings.HasPrefix(bucketURL, "http://") || strings.HasPrefix(bucketURL, "https://") {
		return HTTPBucket{BaseURL: strings.TrimSuffix(bucketURL, "/"), Client: http.DefaultClient}, nil
	}
	normalized := bucketURL
	if !strings.Contains(normalized, "://") {
		abs, err := filepath.Abs(normalized)
		if err != nil {
			return nil, err
		}
		normalized = "file://" + filepath.ToSlash(abs)
	}
	b, err := blob.OpenBucket(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return blobBucket{bucket: b}, nil
}

// NormalizeKey cleans a slash-joined archive key (entry slug + "/" + tile
// slug, or "info") into a consistent bucket key regardless of host path
// separator.
func NormalizeKey(key string) string {
	return path.Clean(filepath.ToSlash(key))
}

// LocalDirExists reports whether dir exists on local disk.
func LocalDirExists(dir string) bool {
	_, err := os.Stat(dir)
	return err == nil
}
