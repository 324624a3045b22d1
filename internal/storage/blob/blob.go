// Package blob stores evidence files behind a provider interface so
// deployments can choose between local disk and S3-compatible storage.
package blob

import (
	"context"
	"io"
	"path/filepath"

	"github.com/google/uuid"
)

// Store is an opaque blob store keyed by filename.
type Store interface {
	// Save writes the blob under the given name.
	Save(ctx context.Context, name string, data io.Reader) error
	// Open returns the blob's contents and size.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// URL returns a direct download link for the blob.
	URL(ctx context.Context, name string) (string, error)
}

// NewName generates an opaque stored filename for an upload. Names must
// not be guessable from report content, so only the extension survives.
func NewName(originalFilename string) string {
	ext := filepath.Ext(filepath.Clean(originalFilename))
	return uuid.NewString() + ext
}
