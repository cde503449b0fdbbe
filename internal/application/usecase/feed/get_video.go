package feed

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

type GetVideoUseCase struct {
	source video.Source
	logger logger.Logger
}

func NewGetVideoUseCase(src video.Source, log logger.Logger) *GetVideoUseCase {
	return &GetVideoUseCase{source: src, logger: log}
}

type GetVideoInput struct {
	VideoID string
	// WithComments also loads the comment list. A failed comment load leaves
	// Comments empty and does not fail the call.
	WithComments bool
}

type GetVideoOutput struct {
	Video    *video.Video
	Comments []video.Comment
}

func (uc *GetVideoUseCase) Execute(ctx context.Context, input GetVideoInput) (*GetVideoOutput, error) {
	ctx, span := tracer.Start(ctx, "GetVideo")
	defer span.End()

	id := strings.TrimSpace(input.VideoID)
	if id == "" {
		return nil, apperror.NewInvalidInput("video id is required", nil)
	}

	v, err := uc.source.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := &GetVideoOutput{Video: v, Comments: []video.Comment{}}
	if input.WithComments {
		comments, err := uc.source.Comments(ctx, id)
		if err != nil {
			uc.logger.Warn("Failed to load comments", zap.String("video_id", id), zap.Error(err))
		} else {
			out.Comments = comments
		}
	}
	return out, nil
}
