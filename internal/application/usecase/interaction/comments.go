package interaction

import (
	"context"
	"strings"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/domain/session"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

const maxCommentLength = 1000

// ListCommentsUseCase is public; reading comments needs no session.
type ListCommentsUseCase struct {
	source video.Source
}

func NewListCommentsUseCase(src video.Source) *ListCommentsUseCase {
	return &ListCommentsUseCase{source: src}
}

func (uc *ListCommentsUseCase) Execute(ctx context.Context, id string) ([]video.Comment, error) {
	id, err := videoID(id)
	if err != nil {
		return nil, err
	}
	return uc.source.Comments(ctx, id)
}

type AddCommentUseCase struct {
	source video.Source
	gate
}

func NewAddCommentUseCase(src video.Source, sessions session.Store, pub service.EventPublisher, log logger.Logger) *AddCommentUseCase {
	return &AddCommentUseCase{source: src, gate: newGate(sessions, pub, log)}
}

type AddCommentInput struct {
	VideoID string
	Text    string
}

func (uc *AddCommentUseCase) Execute(ctx context.Context, input AddCommentInput) (*video.Comment, error) {
	ctx, span := tracer.Start(ctx, "AddComment")
	defer span.End()

	s, err := uc.require(ctx)
	if err != nil {
		return nil, err
	}
	id, err := videoID(input.VideoID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperror.NewInvalidInput("comment text is required", nil)
	}
	if len([]rune(text)) > maxCommentLength {
		return nil, apperror.NewInvalidInput("comment must be at most 1000 characters", nil)
	}

	c, err := uc.source.AddComment(ctx, id, text)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.publish(service.VideoEventCommented, id, s.Username)
	return c, nil
}
