package object

import (
	"context"
	"time"
)

// ObjectStore defines the contract for storing raw documents and issuing
// time-limited download links.
type ObjectStore interface {
	// Put uploads data under the given storage key.
	Put(ctx context.Context, storageKey string, contentType string, data []byte) error
	// PresignGet returns a signed URL valid for expires that forces the
	// browser to save the object under displayName.
	PresignGet(ctx context.Context, storageKey string, displayName string, expires time.Duration) (string, error)
	// ObjectURL returns the permanent, unsigned locator of the object.
	ObjectURL(storageKey string) string
}
