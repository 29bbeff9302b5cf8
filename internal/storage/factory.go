package storage

import (
	"context"
	"fmt"

	"casedocs/internal/config"
)

// New builds the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg config.AppConfig) (Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendGCS:
		return NewGCS(ctx, cfg.GCS)
	case config.StorageBackendMinIO, "":
		return NewMinIO(ctx, cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
