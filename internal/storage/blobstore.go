package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strconv"
	"time"
)

// ErrNotFound is returned when a blob key does not exist upstream.
var ErrNotFound = errors.New("blob not found")

// Object is a fetched blob with its metadata. The caller owns the reader.
type Object struct {
	Reader      io.ReadCloser
	Size        int64
	ContentType string
}

// BlobStore is the gateway to external object storage. Implementations
// translate upstream failures into errors; Delete is idempotent and
// succeeds on missing keys.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// NewBlobKey derives an opaque storage key from the suggested file name and
// the upload time. The nanosecond timestamp makes collisions practically
// impossible without a global counter.
func NewBlobKey(name string, now time.Time) string {
	sum := sha256.Sum256([]byte(name + "\x00" + strconv.FormatInt(now.UnixNano(), 10)))
	return hex.EncodeToString(sum[:])
}
