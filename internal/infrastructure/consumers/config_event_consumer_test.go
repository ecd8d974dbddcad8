package consumers_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/internal/infrastructure/audit"
	"github.com/turtacn/suitability/internal/infrastructure/consumers"
	"github.com/turtacn/suitability/internal/infrastructure/monitoring"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/logger"
)

// fakeReader replays queued messages, then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed int
	closed    bool
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
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed += len(msgs)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type recordingInvalidator struct {
	mu      sync.Mutex
	ids     []string
	flushes int
}

func (i *recordingInvalidator) Flush() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.flushes++
}

func (i *recordingInvalidator) Invalidate(_ context.Context, tenantID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ids = append(i.ids, tenantID)
}

func (i *recordingInvalidator) seen() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.ids...)
}

func eventMessage(t *testing.T, tenantID string, typ constants.TenantConfigEventType) kafka.Message {
	t.Helper()
	data, err := json.Marshal(service.TenantConfigEvent{Type: typ, TenantID: tenantID, OccurredAt: time.Now()})
	require.NoError(t, err)
	return kafka.Message{Key: []byte(tenantID), Value: data}
}

func newTracing() (*monitoring.TracingManager, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return monitoring.NewTracingManagerWithProvider(provider, logger.NewNoopLogger()), recorder
}

func runUntil(t *testing.T, consumer *consumers.ConfigEventConsumer, done func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- consumer.Run(ctx) }()

	require.Eventually(t, done, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-result)
}

func TestConfigEventConsumer_InvalidatesChangedTenants(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		eventMessage(t, "wealth", constants.TenantConfigCreated),
		{Value: []byte("{garbage")},
		eventMessage(t, "retail", constants.TenantConfigUpdated),
	}}
	inv := &recordingInvalidator{}
	tracing, recorder := newTracing()
	consumer := consumers.NewConfigEventConsumerWithReader(reader, inv, tracing, "", logger.NewNoopLogger())

	runUntil(t, consumer, func() bool { return len(inv.seen()) == 2 })

	assert.Equal(t, []string{"wealth", "retail"}, inv.seen())
	assert.Equal(t, 3, reader.committed)
	assert.True(t, reader.closed)
	assert.Equal(t, 1, inv.flushes)

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "ConfigEventConsumer.handle", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestConfigEventConsumer_RejectsBadSignatures(t *testing.T) {
	signed := eventMessage(t, "wealth", constants.TenantConfigUpdated)
	signed.Headers = []kafka.Header{{Key: audit.SignatureHeader, Value: []byte(audit.Sign(signed.Value, "secret"))}}

	forged := eventMessage(t, "retail", constants.TenantConfigUpdated)
	forged.Headers = []kafka.Header{{Key: audit.SignatureHeader, Value: []byte(audit.Sign(forged.Value, "guess"))}}

	unsigned := eventMessage(t, "private_banking", constants.TenantConfigDeleted)

	last := eventMessage(t, "acme", constants.TenantConfigCreated)
	last.Headers = []kafka.Header{{Key: audit.SignatureHeader, Value: []byte(audit.Sign(last.Value, "secret"))}}

	reader := &fakeReader{queue: []kafka.Message{signed, forged, unsigned, last}}
	inv := &recordingInvalidator{}
	tracing, recorder := newTracing()
	consumer := consumers.NewConfigEventConsumerWithReader(reader, inv, tracing, "secret", logger.NewNoopLogger())

	runUntil(t, consumer, func() bool { return len(inv.seen()) == 2 })

	assert.Equal(t, []string{"wealth", "acme"}, inv.seen())
	assert.Equal(t, 4, reader.committed)

	var failed int
	for _, span := range recorder.Ended() {
		if span.Status().Code == codes.Error {
			failed++
		}
	}
	assert.Equal(t, 2, failed)
}
