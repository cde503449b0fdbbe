package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/config"
	"github.com/khoahotran/jutjub/pkg/logger"
)

const TopicVideoEvents = "video.events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducerClient publishes video events keyed by video id so all events
// of one video land on the same partition.
type KafkaProducerClient struct {
	VideoEventsWriter messageWriter
	logger            logger.Logger
}

var _ service.EventPublisher = (*KafkaProducerClient)(nil)

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	videoWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicVideoEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialized Kafka producer", zap.Strings("brokers", brokers), zap.String("topic", TopicVideoEvents))
	return &KafkaProducerClient{VideoEventsWriter: videoWriter, logger: log}, nil
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func NewPublisher(cfg config.Config, log logger.Logger) (service.EventPublisher, func()) {
	if len(cfg.Kafka.Brokers) == 0 {
		return service.NopPublisher{}, func() {}
	}
	p, err := NewKafkaProducerClient(cfg, log)
	if err != nil {
		log.Warn("Kafka disabled", zap.Error(err))
		return service.NopPublisher{}, func() {}
	}
	return p, p.Close
}

func (c *KafkaProducerClient) Publish(ctx context.Context, evt service.VideoEvent) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", evt.EventType, err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.VideoID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.EventType)},
		},
	}
	if err := c.VideoEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", evt.EventType, err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.VideoEventsWriter != nil {
		if err := c.VideoEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close Kafka producer", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka producer")
}
