package interaction

import (
	"context"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/domain/session"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/logger"
)

type ToggleLikeUseCase struct {
	source video.Source
	gate
}

func NewToggleLikeUseCase(src video.Source, sessions session.Store, pub service.EventPublisher, log logger.Logger) *ToggleLikeUseCase {
	return &ToggleLikeUseCase{source: src, gate: newGate(sessions, pub, log)}
}

type ToggleLikeInput struct {
	VideoID string
	// Video, when given, is updated in place after the server accepted the like.
	Video *video.Video
}

// Execute sends a like. The server owns the counter; the local copy is only
// adjusted to reflect the last answer.
func (uc *ToggleLikeUseCase) Execute(ctx context.Context, input ToggleLikeInput) error {
	ctx, span := tracer.Start(ctx, "ToggleLike")
	defer span.End()

	s, err := uc.require(ctx)
	if err != nil {
		return err
	}
	id, err := videoID(input.VideoID)
	if err != nil {
		return err
	}
	if err := uc.source.Like(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	if input.Video != nil {
		input.Video.ToggleLike()
	}
	uc.publish(service.VideoEventLiked, id, s.Username)
	return nil
}
