package storage

import (
	"context"
	"fmt"
	"strings"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/goliatone/go-tenant-auth/config"
)

var (
	_ auth.LogoStorage = (*S3)(nil)
	_ auth.LogoStorage = (*Local)(nil)
)

// FromConfig returns the backend selected by storage.driver
func FromConfig(ctx context.Context, cfg config.StorageConfig) (auth.LogoStorage, error) {
	switch cfg.Driver {
	case config.StorageS3:
		publicURL := ""
		if strings.HasPrefix(cfg.PublicURL, "http://") || strings.HasPrefix(cfg.PublicURL, "https://") {
			publicURL = cfg.PublicURL
		}
		s3, err := NewS3(ctx, S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: publicURL,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	case config.StorageLocal, "":
		local, err := NewLocal(cfg.LocalDir, cfg.PublicURL)
		if err != nil {
			return nil, err
		}
		return local, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
