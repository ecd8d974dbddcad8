// Package audit records and broadcasts tenant configuration changes.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/turtacn/suitability/internal/config"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/pkg/logger"
)

// SignatureHeader carries the HMAC of the message value when a signing key is configured.
const SignatureHeader = "X-Signature"

// MessageWriter is the subset of *kafka.Writer used by the producer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes tenant configuration events to a Kafka topic,
// keyed by tenant id so changes to one tenant stay ordered.
type KafkaProducer struct {
	writer     MessageWriter
	signingKey string
	logger     logger.Logger
}

var _ service.EventPublisher = (*KafkaProducer)(nil)

// NewKafkaProducer creates a new KafkaProducer.
func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		BatchTimeout:           time.Duration(cfg.BatchTimeout) * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaProducerWithWriter(writer, cfg.SigningKey, log)
}

// NewKafkaProducerWithWriter creates a producer on top of an existing writer.
func NewKafkaProducerWithWriter(writer MessageWriter, signingKey string, log logger.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer:     writer,
		signingKey: signingKey,
		logger:     log.WithComponent("KafkaProducer"),
	}
}

// PublishTenantConfigEvent sends an event to the Kafka topic.
func (p *KafkaProducer) PublishTenantConfigEvent(ctx context.Context, event service.TenantConfigEvent) error {
	bytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal tenant config event", err)
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.TenantID),
		Value: bytes,
		Time:  event.OccurredAt,
	}
	if p.signingKey != "" {
		msg.Headers = append(msg.Headers, kafka.Header{
			Key:   SignatureHeader,
			Value: []byte(Sign(bytes, p.signingKey)),
		})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(ctx, "failed to write message to Kafka", err,
			logger.String("tenant_id", event.TenantID),
			logger.String("event_type", string(event.Type)),
		)
		return err
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
