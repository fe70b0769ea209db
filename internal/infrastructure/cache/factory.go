package cache

import (
	"context"
	"fmt"

	"github.com/microfinance/backend/internal/domain/shared"
	"github.com/microfinance/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the store selected by event.idempotency_backend
func NewIdempotencyStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.Event.IdempotencyBackend {
	case "", "memory":
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(0), nil
	case "redis":
		store, err := NewRedisIdempotencyStore(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis idempotency store: %w", err)
		}
		logger.Info("using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend: %s", cfg.Event.IdempotencyBackend)
	}
}
