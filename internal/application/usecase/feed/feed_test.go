package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/jutjub/adapters/cache"
	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/internal/domain/video/videotest"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

func sampleVideos() []video.Video {
	return []video.Video{
		{ID: "1", Title: "cats", Tags: []string{"pets"}, Likes: 2},
		{ID: "2", Title: "dogs", Tags: []string{"pets", "outdoor"}},
		{ID: "3", Title: "hills", Tags: []string{"outdoor"}},
	}
}

func TestListVideos(t *testing.T) {
	src := videotest.NewSource(sampleVideos()...)
	uc := NewListVideosUseCase(src, logger.NewNopLogger())

	out, err := uc.Execute(context.Background(), ListVideosInput{Page: video.Page{Size: 2}})
	require.NoError(t, err)
	assert.Len(t, out.Feed.Videos, 2)
	assert.EqualValues(t, 3, out.Feed.TotalItems)
	assert.Equal(t, 2, out.Feed.TotalPages)
}

func TestListVideos_ReturnsErrorUnchanged(t *testing.T) {
	src := videotest.NewSource()
	src.Err = apperror.NewUnavailable("connection refused", errors.New("dial"))
	uc := NewListVideosUseCase(src, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), ListVideosInput{})
	assert.Same(t, src.Err, err)
}

func TestGetVideo(t *testing.T) {
	src := videotest.NewSource(sampleVideos()...)
	uc := NewGetVideoUseCase(src, logger.NewNopLogger())

	out, err := uc.Execute(context.Background(), GetVideoInput{VideoID: " 2 ", WithComments: true})
	require.NoError(t, err)
	assert.Equal(t, "dogs", out.Video.Title)
	assert.NotNil(t, out.Comments)
	assert.Equal(t, 1, src.Calls("Comments"))

	_, err = uc.Execute(context.Background(), GetVideoInput{VideoID: "  "})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = uc.Execute(context.Background(), GetVideoInput{VideoID: "404"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDiscoverVideos(t *testing.T) {
	src := videotest.NewSource(sampleVideos()...)
	uc := NewDiscoverVideosUseCase(src)
	ctx := context.Background()

	out, err := uc.Execute(ctx, DiscoverVideosInput{Mode: ModeTag, Term: "outdoor"})
	require.NoError(t, err)
	assert.Len(t, out.Feed.Videos, 2)

	out, err = uc.Execute(ctx, DiscoverVideosInput{Mode: ModePopular})
	require.NoError(t, err)
	require.Len(t, out.Feed.Videos, 1)
	assert.Equal(t, "cats", out.Feed.Videos[0].Title)

	_, err = uc.Execute(ctx, DiscoverVideosInput{Mode: ModeSearch, Term: " "})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = uc.Execute(ctx, DiscoverVideosInput{Mode: "trending"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Equal(t, 0, src.Calls("Search"))
}

func TestGetThumbnail_CacheAside(t *testing.T) {
	src := videotest.NewSource(sampleVideos()...)
	src.SetThumbnail("1", []byte("png"))
	mem := cache.NewMemoryThumbnailCache()
	uc := NewGetThumbnailUseCase(src, mem, time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	first, err := uc.Execute(ctx, "1")
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, []byte("png"), first.Thumbnail.Data)

	second, err := uc.Execute(ctx, "1")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, "image/png", second.Thumbnail.ContentType)
	assert.Equal(t, 1, src.Calls("Thumbnail"))
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (*service.CachedThumbnail, error) {
	return nil, errors.New("redis down")
}
func (brokenCache) Set(context.Context, string, service.CachedThumbnail, time.Duration) error {
	return errors.New("redis down")
}
func (brokenCache) Delete(context.Context, string) error { return errors.New("redis down") }

func TestGetThumbnail_CacheFailureFallsThrough(t *testing.T) {
	src := videotest.NewSource(sampleVideos()...)
	src.SetThumbnail("1", []byte("png"))
	uc := NewGetThumbnailUseCase(src, brokenCache{}, time.Minute, logger.NewNopLogger())

	out, err := uc.Execute(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, out.FromCache)
	assert.Equal(t, []byte("png"), out.Thumbnail.Data)
}

func TestProcessVideoEvent(t *testing.T) {
	src := videotest.NewSource(sampleVideos()...)
	src.SetThumbnail("2", []byte("thumb"))
	mem := cache.NewMemoryThumbnailCache()
	thumbs := NewGetThumbnailUseCase(src, mem, time.Minute, logger.NewNopLogger())
	uc := NewProcessVideoEventUseCase(thumbs, mem, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, uc.Execute(ctx, service.VideoEvent{EventType: service.VideoEventUploaded, VideoID: "2"}))
	cached, err := mem.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, []byte("thumb"), cached.Data)

	require.NoError(t, uc.Execute(ctx, service.VideoEvent{EventType: service.VideoEventLiked, VideoID: "2"}))
	require.NoError(t, uc.Execute(ctx, service.VideoEvent{EventType: service.VideoEventUploaded}))
	assert.Equal(t, 1, src.Calls("Thumbnail"))

	require.NoError(t, uc.Execute(ctx, service.VideoEvent{EventType: service.VideoEventDeleted, VideoID: "2"}))
	_, err = mem.Get(ctx, "2")
	assert.ErrorIs(t, err, service.ErrCacheMiss)

	err = uc.Execute(ctx, service.VideoEvent{EventType: service.VideoEventUploaded, VideoID: "3"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
