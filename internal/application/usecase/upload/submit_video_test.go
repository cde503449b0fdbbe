package upload

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/domain/session"
	"github.com/khoahotran/jutjub/internal/domain/upload"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

type fakeUploader struct {
	calls   atomic.Int32
	signals []upload.Signal
	release chan struct{}
	video   *video.Video
	err     error
}

func (f *fakeUploader) Upload(ctx context.Context, sub upload.Submission, signals chan<- upload.Signal) (*video.Video, error) {
	f.calls.Add(1)
	for _, s := range f.signals {
		signals <- s
	}
	if f.release != nil {
		<-f.release
	}
	return f.video, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []service.VideoEvent
	seen   chan struct{}
}

func (p *recordingPublisher) Publish(_ context.Context, evt service.VideoEvent) error {
	p.mu.Lock()
	p.events = append(p.events, evt)
	p.mu.Unlock()
	p.seen <- struct{}{}
	return nil
}

func loggedIn() *session.MemoryStore {
	return session.NewMemoryStore(&session.Session{Token: "t", Username: "ana"})
}

func submission() upload.Submission {
	return upload.Submission{
		Title:     "Holiday",
		Video:     upload.NewBytesFile("h.mp4", "video/mp4", []byte("video")),
		Thumbnail: upload.NewBytesFile("h.png", "image/png", []byte("png")),
	}
}

func drain(t *testing.T, h *Handle) []upload.Progress {
	t.Helper()
	var out []upload.Progress
	timeout := time.After(5 * time.Second)
	for {
		select {
		case p, ok := <-h.Progress:
			if !ok {
				return out
			}
			out = append(out, p)
		case <-timeout:
			t.Fatal("progress channel was not closed")
			return out
		}
	}
}

func TestSubmitVideo_Success(t *testing.T) {
	up := &fakeUploader{
		signals: []upload.Signal{
			{Kind: upload.SignalDispatched},
			{Kind: upload.SignalProgress, Sent: 30, Total: 100},
			{Kind: upload.SignalProgress, Sent: 20, Total: 100},
			{Kind: upload.SignalProgress, Sent: 100, Total: 100},
		},
		video: &video.Video{ID: "42", Title: "Holiday"},
	}
	pub := &recordingPublisher{seen: make(chan struct{}, 1)}
	uc := NewSubmitVideoUseCase(up, loggedIn(), pub, nil, logger.NewNopLogger())

	h, err := uc.Execute(context.Background(), submission())
	require.NoError(t, err)
	require.NotEmpty(t, h.ID)

	records := drain(t, h)
	require.Len(t, records, 5)
	pcts := make([]int, 0, len(records))
	for _, r := range records {
		pcts = append(pcts, r.Percentage)
	}
	assert.Equal(t, []int{0, 30, 30, 100, 100}, pcts)
	for _, r := range records[:4] {
		assert.Equal(t, upload.StatusUploading, r.Status)
	}
	assert.Equal(t, upload.StatusComplete, records[4].Status)

	v, err := h.Result()
	require.NoError(t, err)
	assert.Equal(t, "42", v.ID)

	select {
	case <-pub.seen:
	case <-time.After(5 * time.Second):
		t.Fatal("uploaded event was not published")
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.events, 1)
	assert.Equal(t, service.VideoEventUploaded, pub.events[0].EventType)
	assert.Equal(t, "42", pub.events[0].VideoID)
	assert.Equal(t, "ana", pub.events[0].Username)
}

func TestSubmitVideo_FailureIsSingleTerminalRecord(t *testing.T) {
	up := &fakeUploader{
		signals: []upload.Signal{
			{Kind: upload.SignalDispatched},
			{Kind: upload.SignalProgress, Sent: 55, Total: 100},
		},
		err: apperror.NewUpstream(413, "File too large"),
	}
	uc := NewSubmitVideoUseCase(up, loggedIn(), nil, nil, logger.NewNopLogger())

	h, err := uc.Execute(context.Background(), submission())
	require.NoError(t, err)

	records := drain(t, h)
	require.Len(t, records, 3)
	last := records[2]
	assert.Equal(t, upload.StatusError, last.Status)
	assert.Equal(t, 55, last.Percentage)
	assert.Equal(t, "Upload failed: File too large", last.Message)

	_, err = h.Result()
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestSubmitVideo_RejectsWithoutNetwork(t *testing.T) {
	tests := []struct {
		name     string
		sessions session.Store
		mutate   func(*upload.Submission)
		base     error
	}{
		{"short title", loggedIn(), func(s *upload.Submission) { s.Title = "ab" }, apperror.ErrInvalidInput},
		{"missing thumbnail", loggedIn(), func(s *upload.Submission) { s.Thumbnail = nil }, apperror.ErrInvalidInput},
		{"image as video", loggedIn(), func(s *upload.Submission) {
			s.Video = upload.NewBytesFile("x.png", "image/png", []byte("x"))
		}, apperror.ErrInvalidInput},
		{"no session", session.NewMemoryStore(nil), func(*upload.Submission) {}, apperror.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{}
			uc := NewSubmitVideoUseCase(up, tt.sessions, nil, nil, logger.NewNopLogger())
			sub := submission()
			tt.mutate(&sub)

			h, err := uc.Execute(context.Background(), sub)

			require.Error(t, err)
			assert.Nil(t, h)
			assert.ErrorIs(t, err, tt.base)
			assert.EqualValues(t, 0, up.calls.Load())
		})
	}
}

func TestSubmitVideo_CancelStopsDeliveryNotUpload(t *testing.T) {
	signals := []upload.Signal{{Kind: upload.SignalDispatched}}
	for i := 1; i <= 200; i++ {
		signals = append(signals, upload.Signal{Kind: upload.SignalProgress, Sent: int64(i), Total: 200})
	}
	up := &fakeUploader{
		signals: signals,
		release: make(chan struct{}),
		video:   &video.Video{ID: "7"},
	}
	uc := NewSubmitVideoUseCase(up, loggedIn(), nil, nil, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	h, err := uc.Execute(ctx, submission())
	require.NoError(t, err)

	first := <-h.Progress
	assert.Equal(t, upload.StatusUploading, first.Status)
	cancel()
	close(up.release)

	drain(t, h)
	v, err := h.Result()
	require.NoError(t, err)
	assert.Equal(t, "7", v.ID)
	assert.EqualValues(t, 1, up.calls.Load())
}

func TestSubmitVideo_NilVideoStillCompletes(t *testing.T) {
	up := &fakeUploader{err: nil}
	uc := NewSubmitVideoUseCase(up, loggedIn(), nil, nil, logger.NewNopLogger())

	h, err := uc.Execute(context.Background(), submission())
	require.NoError(t, err)

	records := drain(t, h)
	require.Len(t, records, 1)
	assert.Equal(t, upload.StatusComplete, records[0].Status)
	v, err := h.Result()
	assert.NoError(t, err)
	assert.Nil(t, v)
}

