package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	DefaultStream = "proposal-events"
	payloadField  = "payload"

	// streamMaxLen caps the stream so an unconsumed audit trail stays bounded.
	streamMaxLen = 10000
)

// Publisher records workflow events. Publishing is best-effort: callers log
// errors and carry on.
type Publisher interface {
	Publish(ctx context.Context, event models.WorkflowEvent) error
}

// StreamPublisher appends events to a Redis Stream under a single JSON
// "payload" field.
type StreamPublisher struct {
	client *redis.Client
	stream string
	logger *zerolog.Logger
}

func NewStreamPublisher(client *redis.Client, stream string, logger *zerolog.Logger) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *StreamPublisher) Publish(ctx context.Context, event models.WorkflowEvent) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{payloadField: payload},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", p.stream, err)
	}

	p.logger.Debug().Str("stream", p.stream).Str("id", id).Str("event_id", event.ID).Msg("event published")
	return nil
}

// NopPublisher drops every event. Used when no Redis address is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.WorkflowEvent) error {
	return nil
}

// encodeEvent fills in the id and timestamp when missing and returns the
// JSON payload.
func encodeEvent(event models.WorkflowEvent) (string, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to encode event: %w", err)
	}
	return string(data), nil
}

func decodeEvent(values map[string]any) (models.WorkflowEvent, error) {
	var event models.WorkflowEvent

	payload, ok := values[payloadField].(string)
	if !ok {
		return event, fmt.Errorf("missing %s field", payloadField)
	}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return event, fmt.Errorf("failed to decode event: %w", err)
	}
	return event, nil
}
