// Package consumers contains Kafka consumers for background processing tasks.
package consumers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"

	"github.com/turtacn/suitability/internal/config"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/internal/infrastructure/audit"
	"github.com/turtacn/suitability/internal/infrastructure/monitoring"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/logger"
)

// MessageReader is the subset of *kafka.Reader used by the consumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Invalidator evicts locally cached tenant configurations.
type Invalidator interface {
	Invalidate(ctx context.Context, tenantID string)
	Flush()
}

// ConfigEventConsumer listens for tenant configuration changes made by other replicas
// and evicts the affected tenants from the local cache.
type ConfigEventConsumer struct {
	reader      MessageReader
	invalidator Invalidator
	tracing     *monitoring.TracingManager
	signingKey  string
	logger      logger.Logger
}

// NewConfigEventConsumer creates a consumer in its own consumer group so that every
// replica receives every change. With cfg.SigningKey set, unsigned or forged events are
// skipped.
func NewConfigEventConsumer(cfg config.KafkaConfig, instanceID string, inv Invalidator, tracing *monitoring.TracingManager, log logger.Logger) *ConfigEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        constants.ServiceName + "-cache-" + instanceID,
		StartOffset:    kafka.LastOffset,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})
	return NewConfigEventConsumerWithReader(reader, inv, tracing, cfg.SigningKey, log)
}

// NewConfigEventConsumerWithReader creates a consumer on top of an existing reader.
func NewConfigEventConsumerWithReader(reader MessageReader, inv Invalidator, tracing *monitoring.TracingManager, signingKey string, log logger.Logger) *ConfigEventConsumer {
	return &ConfigEventConsumer{
		reader:      reader,
		invalidator: inv,
		tracing:     tracing,
		signingKey:  signingKey,
		logger:      log.WithComponent("ConfigEventConsumer"),
	}
}

// Run consumes until ctx is cancelled, then closes the reader.
// The local cache is flushed first: a new group starts at the newest offset, so changes
// written before it joined are never delivered.
func (c *ConfigEventConsumer) Run(ctx context.Context) error {
	c.logger.Info(ctx, "starting tenant config event consumer")
	c.invalidator.Flush()
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Error(context.Background(), "failed to close kafka reader", err)
		}
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, context.Canceled) {
				c.logger.Info(context.Background(), "stopping tenant config event consumer")
				return nil
			}
			c.logger.Error(ctx, "failed to fetch message from kafka", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Warn(ctx, "failed to commit kafka message", logger.Err(err))
		}
	}
}

// handle applies one message. Rejected messages are committed and skipped.
func (c *ConfigEventConsumer) handle(ctx context.Context, msg kafka.Message) {
	ctx, span := c.tracing.StartSpanWithAttributes(ctx, "ConfigEventConsumer.handle", map[string]interface{}{
		"messaging.kafka.partition": msg.Partition,
		"messaging.kafka.offset":    msg.Offset,
	})
	defer span.End()

	if err := c.verify(msg); err != nil {
		monitoring.RecordError(span, err)
		c.logger.Warn(ctx, "skipping tenant config event with bad signature",
			logger.String("kafka_key", string(msg.Key)),
			logger.Err(err),
		)
		return
	}

	var event service.TenantConfigEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil || event.TenantID == "" {
		if err == nil {
			err = fmt.Errorf("event has no tenant id")
		}
		monitoring.RecordError(span, err)
		c.logger.Warn(ctx, "skipping malformed tenant config event", logger.String("kafka_message", string(msg.Value)))
		return
	}

	span.SetAttributes(
		attribute.String("tenant.id", event.TenantID),
		attribute.String("event.type", string(event.Type)),
	)
	c.logger.Debug(ctx, "applying remote tenant config change",
		logger.String("tenant_id", event.TenantID),
		logger.String("event_type", string(event.Type)),
	)
	c.invalidator.Invalidate(ctx, event.TenantID)
}

// verify checks the signature header when a signing key is configured.
func (c *ConfigEventConsumer) verify(msg kafka.Message) error {
	if c.signingKey == "" {
		return nil
	}
	for _, h := range msg.Headers {
		if h.Key != audit.SignatureHeader {
			continue
		}
		if audit.Verify(msg.Value, string(h.Value), c.signingKey) {
			return nil
		}
		return fmt.Errorf("signature does not match")
	}
	return fmt.Errorf("missing %s header", audit.SignatureHeader)
}
