package cache

import (
	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/config"
	"github.com/khoahotran/jutjub/pkg/logger"
)

// NewThumbnailCache uses Redis when an address is configured and reachable,
// and the in-memory cache otherwise.
func NewThumbnailCache(cfg config.Config, log logger.Logger) (service.ThumbnailCache, func()) {
	if cfg.Redis.Addr == "" {
		return NewMemoryThumbnailCache(), func() {}
	}
	rdb, err := NewRedisClient(cfg, log)
	if err != nil {
		log.Warn("Redis unavailable, caching thumbnails in memory", zap.Error(err))
		return NewMemoryThumbnailCache(), func() {}
	}
	return NewRedisThumbnailCache(rdb), func() {
		if err := rdb.Close(); err != nil {
			log.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
}
