package adapter

import (
	"context"
	"time"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage is the port for the object store holding stage artifacts
// and encoder output. Vendor SDK implementations live outside the core.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// SignedURL returns a time-limited URL for direct reads.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
