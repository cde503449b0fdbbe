package feed

import (
	"context"
	"strings"

	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
)

type GetViewStatsUseCase struct {
	source video.Source
}

func NewGetViewStatsUseCase(src video.Source) *GetViewStatsUseCase {
	return &GetViewStatsUseCase{source: src}
}

func (uc *GetViewStatsUseCase) Execute(ctx context.Context, videoID string) (*video.ViewStats, error) {
	id := strings.TrimSpace(videoID)
	if id == "" {
		return nil, apperror.NewInvalidInput("video id is required", nil)
	}
	return uc.source.Views(ctx, id)
}
