package loadtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/internal/domain/video/videotest"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

func TestConcurrentViews_CountsEveryView(t *testing.T) {
	src := videotest.NewSource(video.Video{ID: "1"})
	uc := NewConcurrentViewsUseCase(src, logger.NewNopLogger())

	out, err := uc.Execute(context.Background(), ConcurrentViewsInput{
		VideoID:        "1",
		Threads:        4,
		ViewsPerThread: 3,
		Delay:          time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, 12, out.Expected)
	assert.Equal(t, 12, out.Successful)
	assert.Zero(t, out.Failed)
	assert.Equal(t, 0, out.ViewsBefore)
	assert.Equal(t, 12, out.ViewsAfter)
	assert.True(t, out.Passed())
	assert.Positive(t, out.RequestsPerSecond)
	assert.Equal(t, 12, src.Calls("Get"))
}

func TestConcurrentViews_TimeoutsCountAsFailures(t *testing.T) {
	src := videotest.NewSource(video.Video{ID: "1"})
	src.Delay = 200 * time.Millisecond
	uc := NewConcurrentViewsUseCase(src, logger.NewNopLogger())

	out, err := uc.Execute(context.Background(), ConcurrentViewsInput{
		VideoID:        "1",
		Threads:        2,
		ViewsPerThread: 2,
		Timeout:        5 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, out.Failed)
	assert.Zero(t, out.Successful)
	assert.False(t, out.Passed())
}

func TestConcurrentViews_UnknownVideo(t *testing.T) {
	src := videotest.NewSource()
	uc := NewConcurrentViewsUseCase(src, logger.NewNopLogger())

	out, err := uc.Execute(context.Background(), ConcurrentViewsInput{VideoID: "x", Threads: 1, ViewsPerThread: 2})
	require.NoError(t, err)
	assert.Equal(t, -1, out.ViewsBefore)
	assert.Equal(t, -1, out.ViewsAfter)
	assert.Equal(t, 2, out.Failed)
}

func TestConcurrentViews_Defaults(t *testing.T) {
	in := ConcurrentViewsInput{Delay: -time.Second}
	in.defaults()
	assert.Equal(t, DefaultThreads, in.Threads)
	assert.Equal(t, DefaultViewsPerThread, in.ViewsPerThread)
	assert.Zero(t, in.Delay)
	assert.Equal(t, DefaultTimeout, in.Timeout)

	_, err := NewConcurrentViewsUseCase(videotest.NewSource(), logger.NewNopLogger()).Execute(context.Background(), ConcurrentViewsInput{})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
