package events

import (
	"context"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
)

func TestEncodeDecodeEvent(t *testing.T) {
	event := models.WorkflowEvent{
		RequestID:   "req-1",
		Intent:      "evaluate",
		Agent:       "Proposal Evaluator",
		FileID:      "file-abc",
		IndexStatus: models.IndexStatusCompleted,
	}

	payload, err := encodeEvent(event)
	if err != nil {
		t.Fatalf("encodeEvent() failed: %v", err)
	}

	decoded, err := decodeEvent(map[string]any{payloadField: payload})
	if err != nil {
		t.Fatalf("decodeEvent() failed: %v", err)
	}

	if decoded.ID == "" {
		t.Error("Expected an id to be assigned")
	}
	if decoded.CreatedAt.IsZero() {
		t.Error("Expected a timestamp to be assigned")
	}
	if decoded.RequestID != "req-1" || decoded.Agent != "Proposal Evaluator" || decoded.IndexStatus != models.IndexStatusCompleted {
		t.Errorf("Unexpected decoded event %+v", decoded)
	}
}

func TestEncodeEvent_KeepsExistingIDAndTime(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	payload, err := encodeEvent(models.WorkflowEvent{ID: "evt-1", CreatedAt: created})
	if err != nil {
		t.Fatalf("encodeEvent() failed: %v", err)
	}

	decoded, err := decodeEvent(map[string]any{payloadField: payload})
	if err != nil {
		t.Fatalf("decodeEvent() failed: %v", err)
	}
	if decoded.ID != "evt-1" || !decoded.CreatedAt.Equal(created) {
		t.Errorf("Expected id and time preserved, got %+v", decoded)
	}
}

func TestDecodeEvent_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{name: "missing payload", values: map[string]any{"other": "x"}},
		{name: "payload not a string", values: map[string]any{payloadField: 42}},
		{name: "invalid json", values: map[string]any{payloadField: "{not json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeEvent(tt.values); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), models.WorkflowEvent{}); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}
