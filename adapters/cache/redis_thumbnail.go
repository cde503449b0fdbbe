package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/config"
	"github.com/khoahotran/jutjub/pkg/logger"
)

const keyPrefix = "jutjub:thumbnail:"

func NewRedisClient(cfg config.Config, log logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("can not connect Redis: %w", err)
	}

	log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return rdb, nil
}

// RedisThumbnailCache stores each thumbnail as a hash holding the content
// type and the raw bytes.
type RedisThumbnailCache struct {
	rdb redis.Cmdable
}

var _ service.ThumbnailCache = (*RedisThumbnailCache)(nil)

func NewRedisThumbnailCache(rdb redis.Cmdable) *RedisThumbnailCache {
	return &RedisThumbnailCache{rdb: rdb}
}

func (c *RedisThumbnailCache) Get(ctx context.Context, videoID string) (*service.CachedThumbnail, error) {
	vals, err := c.rdb.HGetAll(ctx, keyPrefix+videoID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, service.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get thumbnail: %w", err)
	}
	data, ok := vals["data"]
	if !ok {
		return nil, service.ErrCacheMiss
	}
	return &service.CachedThumbnail{ContentType: vals["content_type"], Data: []byte(data)}, nil
}

func (c *RedisThumbnailCache) Set(ctx context.Context, videoID string, thumb service.CachedThumbnail, ttl time.Duration) error {
	key := keyPrefix + videoID
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "content_type", thumb.ContentType, "data", thumb.Data)
		if ttl > 0 {
			p.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set thumbnail: %w", err)
	}
	return nil
}

func (c *RedisThumbnailCache) Delete(ctx context.Context, videoID string) error {
	if err := c.rdb.Del(ctx, keyPrefix+videoID).Err(); err != nil {
		return fmt.Errorf("redis delete thumbnail: %w", err)
	}
	return nil
}
