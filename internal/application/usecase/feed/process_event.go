package feed

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/pkg/logger"
)

// ProcessVideoEventUseCase keeps the thumbnail cache in step with video
// events: new uploads are warmed, deleted videos are evicted.
type ProcessVideoEventUseCase struct {
	thumbnails *GetThumbnailUseCase
	cache      service.ThumbnailCache
	logger     logger.Logger
}

func NewProcessVideoEventUseCase(thumbs *GetThumbnailUseCase, cache service.ThumbnailCache, log logger.Logger) *ProcessVideoEventUseCase {
	return &ProcessVideoEventUseCase{thumbnails: thumbs, cache: cache, logger: log}
}

func (uc *ProcessVideoEventUseCase) Execute(ctx context.Context, evt service.VideoEvent) error {
	ctx, span := tracer.Start(ctx, "ProcessVideoEvent")
	defer span.End()

	if evt.VideoID == "" {
		uc.logger.Warn("Ignoring event without video id", zap.String("event_type", string(evt.EventType)))
		return nil
	}

	switch evt.EventType {
	case service.VideoEventUploaded:
		if _, err := uc.thumbnails.Execute(ctx, evt.VideoID); err != nil {
			span.RecordError(err)
			return err
		}
		uc.logger.Info("Thumbnail warmed", zap.String("video_id", evt.VideoID))
	case service.VideoEventDeleted:
		if err := uc.cache.Delete(ctx, evt.VideoID); err != nil {
			span.RecordError(err)
			return err
		}
		uc.logger.Info("Thumbnail evicted", zap.String("video_id", evt.VideoID))
	default:
		uc.logger.Debug("Event needs no processing", zap.String("event_type", string(evt.EventType)))
	}
	return nil
}
