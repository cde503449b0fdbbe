package service

import (
	"context"
	"time"
)

type VideoEventType string

const (
	VideoEventUploaded  VideoEventType = "video.uploaded"
	VideoEventLiked     VideoEventType = "video.liked"
	VideoEventCommented VideoEventType = "video.commented"
	VideoEventDeleted   VideoEventType = "video.deleted"
)

type VideoEvent struct {
	EventID    string         `json:"event_id"`
	EventType  VideoEventType `json:"event_type"`
	VideoID    string         `json:"video_id"`
	Username   string         `json:"username,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, evt VideoEvent) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, VideoEvent) error { return nil }
