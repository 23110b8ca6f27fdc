package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local writes logos under a directory served by the HTTP layer
type Local struct {
	dir       string
	publicURL string
}

// NewLocal creates dir when missing. publicURL is the prefix the
// directory is served under, e.g. /uploads.
func NewLocal(dir, publicURL string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("local storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Dir is the root directory files are written to
func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) Upload(ctx context.Context, key, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := filepath.Clean("/" + key)
	target := filepath.Join(l.dir, filepath.FromSlash(clean))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create logo dir: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write logo: %w", err)
	}

	return l.publicURL + filepath.ToSlash(clean), nil
}
