package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrBlobNotFound indicates the requested key holds no blob.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the opaque put/get/delete capability over byte blobs, keyed by
// slash-separated string paths. Delete is best-effort: callers treat failures
// as log-and-continue.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Origin tags tracks served from this store: "local" or "remote".
	Origin() string
}

// Presigner is implemented by stores that can hand out time-limited URLs, so
// the stream handler can redirect instead of proxying bytes.
type Presigner interface {
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// RangeReader is implemented by stores whose blobs can be opened as seekable
// streams, enabling byte-range responses for seeking in long files.
type RangeReader interface {
	Open(ctx context.Context, key string) (io.ReadSeekCloser, time.Time, error)
}
