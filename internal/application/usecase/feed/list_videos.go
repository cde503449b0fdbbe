package feed

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/logger"
)

var tracer = otel.Tracer("feed_usecase")

type ListVideosUseCase struct {
	source video.Source
	logger logger.Logger
}

func NewListVideosUseCase(src video.Source, log logger.Logger) *ListVideosUseCase {
	return &ListVideosUseCase{source: src, logger: log}
}

type ListVideosInput struct {
	Page video.Page
}

type ListVideosOutput struct {
	Feed *video.Feed
}

// Execute fetches one page of the feed. Errors are returned unchanged so the
// caller keeps whatever it showed before.
func (uc *ListVideosUseCase) Execute(ctx context.Context, input ListVideosInput) (*ListVideosOutput, error) {
	ctx, span := tracer.Start(ctx, "ListVideos")
	defer span.End()

	f, err := uc.source.List(ctx, input.Page.Normalize())
	if err != nil {
		span.RecordError(err)
		uc.logger.Warn("Failed to fetch videos", zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int("videos", len(f.Videos)))
	return &ListVideosOutput{Feed: f}, nil
}
