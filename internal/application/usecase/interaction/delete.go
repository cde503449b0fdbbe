package interaction

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/domain/session"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

type DeleteVideoUseCase struct {
	source video.Source
	cache  service.ThumbnailCache
	gate
}

func NewDeleteVideoUseCase(src video.Source, cache service.ThumbnailCache, sessions session.Store, pub service.EventPublisher, log logger.Logger) *DeleteVideoUseCase {
	return &DeleteVideoUseCase{source: src, cache: cache, gate: newGate(sessions, pub, log)}
}

func (uc *DeleteVideoUseCase) Execute(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "DeleteVideo")
	defer span.End()

	s, err := uc.sessionFor(ctx)
	if err != nil {
		return err
	}
	id, err = videoID(id)
	if err != nil {
		return err
	}
	if err := uc.source.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, id); err != nil {
			uc.logger.Warn("Failed to evict thumbnail", zap.String("video_id", id), zap.Error(err))
		}
	}
	uc.publish(service.VideoEventDeleted, id, s.Username)
	return nil
}

func (uc *DeleteVideoUseCase) sessionFor(ctx context.Context) (*session.Session, error) {
	s, err := session.Current(ctx, uc.sessions, uc.now())
	if err != nil {
		return nil, apperror.NewUnauthorized("You need to log in to delete videos.", err)
	}
	return s, nil
}
