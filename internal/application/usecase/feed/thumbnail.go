package feed

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

// GetThumbnailUseCase reads thumbnails through a cache. Cache failures are
// logged and fall through to the API.
type GetThumbnailUseCase struct {
	source video.Source
	cache  service.ThumbnailCache
	ttl    time.Duration
	logger logger.Logger
}

func NewGetThumbnailUseCase(src video.Source, cache service.ThumbnailCache, ttl time.Duration, log logger.Logger) *GetThumbnailUseCase {
	return &GetThumbnailUseCase{source: src, cache: cache, ttl: ttl, logger: log}
}

type GetThumbnailOutput struct {
	Thumbnail service.CachedThumbnail
	FromCache bool
}

func (uc *GetThumbnailUseCase) Execute(ctx context.Context, videoID string) (*GetThumbnailOutput, error) {
	id := strings.TrimSpace(videoID)
	if id == "" {
		return nil, apperror.NewInvalidInput("video id is required", nil)
	}

	if uc.cache != nil {
		thumb, err := uc.cache.Get(ctx, id)
		switch {
		case err == nil:
			return &GetThumbnailOutput{Thumbnail: *thumb, FromCache: true}, nil
		case !errors.Is(err, service.ErrCacheMiss):
			uc.logger.Warn("Thumbnail cache read failed", zap.String("video_id", id), zap.Error(err))
		}
	}

	data, contentType, err := uc.source.Thumbnail(ctx, id)
	if err != nil {
		return nil, err
	}
	thumb := service.CachedThumbnail{ContentType: contentType, Data: data}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, id, thumb, uc.ttl); err != nil {
			uc.logger.Warn("Thumbnail cache write failed", zap.String("video_id", id), zap.Error(err))
		}
	}
	return &GetThumbnailOutput{Thumbnail: thumb}, nil
}
