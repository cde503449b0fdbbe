package upload

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/domain/session"
	"github.com/khoahotran/jutjub/internal/domain/upload"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
	"github.com/khoahotran/jutjub/pkg/metrics"
	"github.com/khoahotran/jutjub/pkg/validate"
)

var tracer = otel.Tracer("upload_usecase")

const signalBuffer = 64

type SubmitVideoUseCase struct {
	uploader  service.Uploader
	sessions  session.Store
	publisher service.EventPublisher
	metrics   *metrics.ClientMetrics
	logger    logger.Logger
	now       func() time.Time
}

func NewSubmitVideoUseCase(
	u service.Uploader,
	sessions session.Store,
	pub service.EventPublisher,
	m *metrics.ClientMetrics,
	log logger.Logger,
) *SubmitVideoUseCase {
	if pub == nil {
		pub = service.NopPublisher{}
	}
	return &SubmitVideoUseCase{uploader: u, sessions: sessions, publisher: pub, metrics: m, logger: log, now: time.Now}
}

// Handle is one running submission. Progress yields clamped records in
// transport order and is closed right after the single terminal record.
type Handle struct {
	ID       string
	Progress <-chan upload.Progress

	mu    sync.Mutex
	video *video.Video
	err   error
}

// Result returns the uploaded video and the upload error. Both are only
// meaningful once Progress is closed.
func (h *Handle) Result() (*video.Video, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.video, h.err
}

func (h *Handle) finish(v *video.Video, err error) {
	h.mu.Lock()
	h.video, h.err = v, err
	h.mu.Unlock()
}

// Execute validates sub and starts the upload. Validation and session
// failures are returned directly and nothing is sent over the network.
//
// Cancelling ctx does not abort the request: it only stops delivery on
// Progress, which still closes when the upload finishes. Callers that keep
// ctx alive must drain Progress, since an unread channel holds the upload back.
func (uc *SubmitVideoUseCase) Execute(ctx context.Context, sub upload.Submission) (*Handle, error) {
	if err := validate.Struct(sub); err != nil {
		return nil, err
	}
	if err := upload.CheckBinaries(sub); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	sess, err := session.Current(ctx, uc.sessions, uc.now())
	if err != nil {
		return nil, apperror.NewUnauthorized("You need to log in to upload videos.", err)
	}

	out := make(chan upload.Progress)
	h := &Handle{ID: uuid.NewString(), Progress: out}
	signals := make(chan upload.Signal, signalBuffer)

	// the request outlives the caller's interest by contract
	upCtx := context.WithoutCancel(ctx)
	go uc.send(upCtx, h, sess, sub, signals)
	go uc.relay(ctx, h, signals, out)

	return h, nil
}

func (uc *SubmitVideoUseCase) send(ctx context.Context, h *Handle, sess *session.Session, sub upload.Submission, signals chan upload.Signal) {
	defer close(signals)

	ctx, span := tracer.Start(ctx, "SubmitVideo")
	defer span.End()
	span.SetAttributes(attribute.String("upload_id", h.ID))

	log := uc.logger.With(zap.String("upload_id", h.ID))
	log.Info("Upload started", zap.String("title", sub.Title))

	v, err := uc.uploader.Upload(ctx, sub, signals)
	h.finish(v, err)
	if err != nil {
		span.RecordError(err)
		uc.metrics.IncUpload(string(upload.StatusError))
		log.Warn("Upload failed", zap.Error(err))
		signals <- upload.Signal{Kind: upload.SignalFailed, Err: errors.New(apperror.UserMessage(err))}
		return
	}

	uc.metrics.IncUpload(string(upload.StatusComplete))
	signals <- upload.Signal{Kind: upload.SignalResponse}
	if v == nil {
		log.Info("Upload complete")
		return
	}
	log.Info("Upload complete", zap.String("video_id", v.ID))

	go func() {
		evt := service.VideoEvent{
			EventID:    uuid.NewString(),
			EventType:  service.VideoEventUploaded,
			VideoID:    v.ID,
			Username:   sess.Username,
			OccurredAt: time.Now().UTC(),
		}
		if err := uc.publisher.Publish(context.Background(), evt); err != nil {
			uc.logger.Error("Failed to publish 'video.uploaded' event", err, zap.String("video_id", v.ID))
		}
	}()
}

// relay maps signals to progress records. It keeps draining after the caller
// went away so the uploader never blocks on a full channel.
func (uc *SubmitVideoUseCase) relay(ctx context.Context, h *Handle, signals <-chan upload.Signal, out chan<- upload.Progress) {
	defer close(out)

	tracker := upload.NewTracker()
	interested := true
	for sig := range signals {
		p, ok := tracker.Next(sig)
		if !ok || !interested {
			continue
		}
		select {
		case out <- p:
		case <-ctx.Done():
			interested = false
			uc.logger.Debug("Upload progress no longer observed", zap.String("upload_id", h.ID))
		}
	}
}
