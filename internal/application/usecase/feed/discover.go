package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
)

type DiscoverMode string

const (
	ModeRecent  DiscoverMode = "recent"
	ModePopular DiscoverMode = "popular"
	ModeSearch  DiscoverMode = "search"
	ModeTag     DiscoverMode = "tag"
)

// DiscoverVideosUseCase serves the secondary listings: recent, popular,
// keyword search and tag.
type DiscoverVideosUseCase struct {
	source video.Source
}

func NewDiscoverVideosUseCase(src video.Source) *DiscoverVideosUseCase {
	return &DiscoverVideosUseCase{source: src}
}

type DiscoverVideosInput struct {
	Mode DiscoverMode
	// Term is the keyword for search and the tag name for tag mode.
	Term string
	Page video.Page
}

func (uc *DiscoverVideosUseCase) Execute(ctx context.Context, input DiscoverVideosInput) (*ListVideosOutput, error) {
	ctx, span := tracer.Start(ctx, "DiscoverVideos")
	defer span.End()

	page := input.Page.Normalize()
	term := strings.TrimSpace(input.Term)

	var (
		f   *video.Feed
		err error
	)
	switch input.Mode {
	case ModeRecent:
		f, err = uc.source.Recent(ctx, page)
	case ModePopular:
		f, err = uc.source.Popular(ctx, page)
	case ModeSearch:
		if term == "" {
			return nil, apperror.NewInvalidInput("search keyword is required", nil)
		}
		f, err = uc.source.Search(ctx, term, page)
	case ModeTag:
		if term == "" {
			return nil, apperror.NewInvalidInput("tag is required", nil)
		}
		f, err = uc.source.ByTag(ctx, term, page)
	default:
		return nil, apperror.NewInvalidInput(fmt.Sprintf("unknown listing %q", input.Mode), nil)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &ListVideosOutput{Feed: f}, nil
}
