package storage

import (
	"context"
	"fmt"

	"github.com/microfinance/backend/internal/domain/document"
	"github.com/microfinance/backend/internal/infrastructure/config"
	"github.com/microfinance/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewImageStore builds the page image store selected by storage.backend
func NewImageStore(ctx context.Context, cfg *config.StorageConfig, db *gorm.DB, logger *zap.Logger) (document.ImageStore, error) {
	switch cfg.Backend {
	case "", "database":
		logger.Info("storing page images in the database")
		return persistence.NewGormImageStore(db), nil
	case "s3":
		store, err := NewS3ImageStore(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 image store: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("storing page images in S3", zap.String("bucket", cfg.Bucket))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
