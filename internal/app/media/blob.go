// Package media uploads item photos and avatars to the configured
// blob backend and resolves their public URLs.
package media

import (
	"context"
	"io"
)

// BlobStore is the storage capability the uploader runs against.
type BlobStore interface {
	// Put stores the blob under key, replacing any existing blob with
	// the same key.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// URL resolves the public URL for a stored key.
	URL(key string) string
}
