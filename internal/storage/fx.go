package storage

import (
	"context"

	"github.com/veridocs/veridocs/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(NewStore),
)

// NewStore selects the backend from configuration.
func NewStore(cfg config.Config, log *zap.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case "memory":
		return NewMemoryStore(cfg.StorageBucket), nil
	default:
		return NewGCSStore(context.Background(), log, cfg.StorageBucket)
	}
}
