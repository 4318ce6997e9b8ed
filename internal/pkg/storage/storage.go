package storage

import (
	"context"
	"io"
	"time"
)

// FileStorage abstracts where evidence photos and attachments live. Paths
// are storage keys; serving happens through GetURL, not through the API.
type FileStorage interface {
	// Upload stores a file and returns the storage path/key.
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// GetURL generates a presigned or public URL for the stored file.
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}
