package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/config"
	"github.com/khoahotran/jutjub/pkg/logger"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

func TestPublish_KeysByVideoID(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducerClient{VideoEventsWriter: w, logger: logger.NewNopLogger()}
	evt := service.VideoEvent{EventID: "e1", EventType: service.VideoEventLiked, VideoID: "42", Username: "ana", OccurredAt: time.Unix(0, 0).UTC()}

	require.NoError(t, p.Publish(context.Background(), evt))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "video.liked", string(msg.Headers[0].Value))

	var decoded service.VideoEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, evt, decoded)

	w.err = errors.New("broker down")
	assert.ErrorContains(t, p.Publish(context.Background(), evt), "broker down")
}

func TestNewPublisher_WithoutBrokers(t *testing.T) {
	p, closeFn := NewPublisher(config.Config{}, logger.NewNopLogger())
	defer closeFn()
	assert.IsType(t, service.NopPublisher{}, p)

	_, err := NewKafkaProducerClient(config.Config{}, logger.NewNopLogger())
	assert.Error(t, err)
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	drained   chan struct{}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	select {
	case r.drained <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func eventMessage(t *testing.T, offset int64, evt service.VideoEvent) kafka.Message {
	t.Helper()
	b, err := json.Marshal(evt)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Key: []byte(evt.VideoID), Value: b}
}

func TestConsumer_CommitsHandledAndUndecodable(t *testing.T) {
	r := &fakeReader{
		queue: []kafka.Message{
			eventMessage(t, 1, service.VideoEvent{EventType: service.VideoEventUploaded, VideoID: "1"}),
			{Offset: 2, Value: []byte("{not json")},
			eventMessage(t, 3, service.VideoEvent{EventType: service.VideoEventUploaded, VideoID: "fail"}),
			eventMessage(t, 4, service.VideoEvent{EventType: service.VideoEventDeleted, VideoID: "2"}),
		},
		drained: make(chan struct{}, 1),
	}
	c := &Consumer{reader: r, logger: logger.NewNopLogger()}

	var handled []string
	handle := func(_ context.Context, evt service.VideoEvent) error {
		handled = append(handled, evt.VideoID)
		if evt.VideoID == "fail" {
			return errors.New("api down")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, handle) }()

	select {
	case <-r.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not drain the queue")
	}
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"1", "fail", "2"}, handled)
	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, []int64{1, 2, 4}, r.committed)
}
