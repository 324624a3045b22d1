package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores blobs on the local filesystem. Files are served by the
// HTTP layer under /uploads/.
type Local struct {
	rootPath string
	baseURL  string
}

var _ Store = (*Local)(nil)

func NewLocal(rootPath, baseURL string) (*Local, error) {
	// filepath.Clean prevents traversal like "uploads/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", p, err)
	}

	return &Local{rootPath: p, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) path(name string) string {
	// Base strips any remaining directory components from the name
	return filepath.Join(l.rootPath, filepath.Base(name))
}

func (l *Local) Save(ctx context.Context, name string, data io.Reader) error {
	dst, err := os.Create(l.path(name))
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, data); err != nil {
		os.Remove(l.path(name)) // best effort cleanup
		return fmt.Errorf("failed to copy file data: %w", err)
	}

	return nil
}

func (l *Local) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	file, err := os.Open(l.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("evidence file not found: %w", err)
		}
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat file: %w", err)
	}

	return file, info.Size(), nil
}

func (l *Local) URL(ctx context.Context, name string) (string, error) {
	return l.baseURL + "/uploads/" + filepath.Base(name), nil
}

// Root returns the storage directory, used to mount the static file server.
func (l *Local) Root() string {
	return l.rootPath
}
