package storage

import (
	"context"
	"fmt"
	"log/slog"

	"signdesk/internal/config"
)

// Supported storage drivers.
const (
	DriverMinIO = "minio"
	DriverS3    = "s3"
)

// New builds the storage driver selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (Storage, error) {
	switch cfg.Driver {
	case DriverMinIO, "":
		return NewMinIO(ctx, cfg.MinIO, log)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
