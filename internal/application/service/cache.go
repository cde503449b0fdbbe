package service

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

type CachedThumbnail struct {
	ContentType string
	Data        []byte
}

type ThumbnailCache interface {
	Get(ctx context.Context, videoID string) (*CachedThumbnail, error)
	Set(ctx context.Context, videoID string, thumb CachedThumbnail, ttl time.Duration) error
	Delete(ctx context.Context, videoID string) error
}
