package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	key   string
	event any
	err   error
}

func (p *capturePublisher) Publish(_ context.Context, routingKey string, event any) error {
	p.key = routingKey
	p.event = event
	return p.err
}

func (p *capturePublisher) Close() error { return nil }

func TestEmitPublishesEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	emitter := NewAuditEmitter(pub, "audit.bot", "groupme-bot", "test")

	userID := "u1"
	emitter.Emit(context.Background(), "WARN", "non-mod attempted !reset", "req-1", "g1", &userID)

	require.Equal(t, "audit.bot", pub.key)
	envelope, ok := pub.event.(AuditEnvelope)
	require.True(t, ok)
	require.Equal(t, 1, envelope.SchemaVersion)
	require.Equal(t, "audit_log", envelope.EventType)
	require.Equal(t, "g1", envelope.GroupID)
	require.Equal(t, "req-1", envelope.RequestID)
	require.Equal(t, &userID, envelope.UserID)
	require.Equal(t, "WARN", envelope.Payload.Level)
}

func TestEmitNilEmitterIsNoop(t *testing.T) {
	var emitter *AuditEmitter
	emitter.Emit(context.Background(), "INFO", "nothing", "req-1", "g1", nil)
}

func TestEmitSwallowsPublishError(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	emitter := NewAuditEmitter(pub, "audit.bot", "groupme-bot", "test")

	// Losing an audit event must never break the dispatch path.
	emitter.Emit(context.Background(), "ERROR", "boom", "req-1", "g1", nil)
}
