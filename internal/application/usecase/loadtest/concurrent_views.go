package loadtest

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

var tracer = otel.Tracer("loadtest_usecase")

const (
	DefaultThreads        = 10
	DefaultViewsPerThread = 5
	DefaultDelay          = 100 * time.Millisecond
	DefaultTimeout        = 5 * time.Second
)

// ConcurrentViewsUseCase opens one video from many simulated viewers at once
// to check that the server counts every view.
type ConcurrentViewsUseCase struct {
	source video.Source
	logger logger.Logger
}

func NewConcurrentViewsUseCase(src video.Source, log logger.Logger) *ConcurrentViewsUseCase {
	return &ConcurrentViewsUseCase{source: src, logger: log}
}

type ConcurrentViewsInput struct {
	VideoID        string
	Threads        int
	ViewsPerThread int
	// Delay separates consecutive views of one viewer.
	Delay time.Duration
	// Timeout bounds each single view request.
	Timeout time.Duration
}

type ConcurrentViewsOutput struct {
	Expected          int
	Successful        int
	Failed            int
	Duration          time.Duration
	RequestsPerSecond float64
	// ViewsBefore and ViewsAfter are -1 when the stats endpoint could not be read.
	ViewsBefore int
	ViewsAfter  int
}

func (o *ConcurrentViewsOutput) Passed() bool {
	return o.Failed == 0 && o.Successful == o.Expected
}

func (in *ConcurrentViewsInput) defaults() {
	if in.Threads <= 0 {
		in.Threads = DefaultThreads
	}
	if in.ViewsPerThread <= 0 {
		in.ViewsPerThread = DefaultViewsPerThread
	}
	if in.Delay < 0 {
		in.Delay = 0
	}
	if in.Timeout <= 0 {
		in.Timeout = DefaultTimeout
	}
}

func (uc *ConcurrentViewsUseCase) Execute(ctx context.Context, input ConcurrentViewsInput) (*ConcurrentViewsOutput, error) {
	input.VideoID = strings.TrimSpace(input.VideoID)
	if input.VideoID == "" {
		return nil, apperror.NewInvalidInput("video id is required", nil)
	}
	input.defaults()

	ctx, span := tracer.Start(ctx, "ConcurrentViews")
	defer span.End()
	span.SetAttributes(
		attribute.String("video_id", input.VideoID),
		attribute.Int("threads", input.Threads),
		attribute.Int("views_per_thread", input.ViewsPerThread),
	)

	out := &ConcurrentViewsOutput{
		Expected:    input.Threads * input.ViewsPerThread,
		ViewsBefore: uc.viewCount(ctx, input.VideoID),
		ViewsAfter:  -1,
	}

	var ok, failed atomic.Int64
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 1; i <= input.Threads; i++ {
		viewer := i
		g.Go(func() error {
			limiter := rate.NewLimiter(rate.Inf, 1)
			if input.Delay > 0 {
				limiter = rate.NewLimiter(rate.Every(input.Delay), 1)
			}
			for n := 0; n < input.ViewsPerThread; n++ {
				if err := limiter.Wait(gctx); err != nil {
					failed.Add(int64(input.ViewsPerThread - n))
					return err
				}
				if err := uc.view(gctx, input.VideoID, input.Timeout); err != nil {
					failed.Add(1)
					uc.logger.Debug("View failed", zap.Int("viewer", viewer), zap.Error(err))
					continue
				}
				ok.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	out.Duration = time.Since(start)
	out.Successful = int(ok.Load())
	out.Failed = int(failed.Load())
	if secs := out.Duration.Seconds(); secs > 0 {
		out.RequestsPerSecond = float64(out.Successful+out.Failed) / secs
	}
	if err != nil {
		span.RecordError(err)
		return out, err
	}
	out.ViewsAfter = uc.viewCount(ctx, input.VideoID)

	uc.logger.Info("Concurrent views finished",
		zap.Int("successful", out.Successful),
		zap.Int("failed", out.Failed),
		zap.Duration("duration", out.Duration),
	)
	return out, nil
}

func (uc *ConcurrentViewsUseCase) view(ctx context.Context, id string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := uc.source.Get(ctx, id)
	return err
}

func (uc *ConcurrentViewsUseCase) viewCount(ctx context.Context, id string) int {
	stats, err := uc.source.Views(ctx, id)
	if err != nil {
		uc.logger.Debug("View stats unavailable", zap.String("video_id", id), zap.Error(err))
		return -1
	}
	return stats.ViewsCount
}
