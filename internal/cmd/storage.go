package cmd

import (
	"context"
	"fmt"

	"github.com/castforge/castforge/internal/config"
	"github.com/castforge/castforge/pkg/objstore"
	"github.com/castforge/castforge/pkg/objstore/file"
	"github.com/castforge/castforge/pkg/objstore/s3"
)

// buildBackend opens the configured object-store backend.
func buildBackend(ctx context.Context, cfg *config.Config) (objstore.Backend, error) {
	switch cfg.Storage.Backend {
	case "file", "":
		return file.New(file.Config{
			BaseDir: cfg.Storage.File.BaseDir,
			BaseURL: cfg.Storage.File.BaseURL,
		})
	case "s3":
		return s3.New(ctx, s3.Config{
			Bucket:          cfg.Storage.S3.Bucket,
			Region:          cfg.Storage.S3.Region,
			Endpoint:        cfg.Storage.S3.Endpoint,
			ForcePathStyle:  cfg.Storage.S3.ForcePathStyle,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			PublicBaseURL:   cfg.Storage.S3.PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// storageHealthChecker probes the backend with a cheap list call.
type storageHealthChecker struct {
	backend objstore.Backend
}

func (c storageHealthChecker) CheckHealth(ctx context.Context) error {
	_, err := c.backend.List(ctx, "healthcheck-probe/")
	return err
}
