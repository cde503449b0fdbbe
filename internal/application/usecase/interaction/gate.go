package interaction

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/domain/session"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

var tracer = otel.Tracer("interaction_usecase")

const loginRequired = "You need to log in to like or comment on videos."

// gate holds what every interaction needs: the injected session and a
// best-effort event sink.
type gate struct {
	sessions  session.Store
	publisher service.EventPublisher
	logger    logger.Logger
	now       func() time.Time
}

func newGate(sessions session.Store, pub service.EventPublisher, log logger.Logger) gate {
	if pub == nil {
		pub = service.NopPublisher{}
	}
	return gate{sessions: sessions, publisher: pub, logger: log, now: time.Now}
}

func (g gate) require(ctx context.Context) (*session.Session, error) {
	s, err := session.Current(ctx, g.sessions, g.now())
	if err != nil {
		return nil, apperror.NewUnauthorized(loginRequired, err)
	}
	return s, nil
}

func (g gate) publish(kind service.VideoEventType, videoID, username string) {
	go func() {
		evt := service.VideoEvent{
			EventID:    uuid.NewString(),
			EventType:  kind,
			VideoID:    videoID,
			Username:   username,
			OccurredAt: time.Now().UTC(),
		}
		if err := g.publisher.Publish(context.Background(), evt); err != nil {
			g.logger.Error("Failed to publish video event", err, zap.String("event_type", string(kind)), zap.String("video_id", videoID))
		}
	}()
}

func videoID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperror.NewInvalidInput("video id is required", nil)
	}
	return id, nil
}
