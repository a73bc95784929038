package domain

import (
	"encoding/json"
	"time"
)

// Event types emitted by the public flows.
const (
	EventContactSubmitted    = "contact_submitted"
	EventContactRateLimited  = "contact_rate_limited"
	EventOnboardingStep      = "onboarding_step"
	EventOnboardingCompleted = "onboarding_completed"
	EventGRPCRequest         = "grpc_request"
)

// Event is a telemetry event. Workspace and user are empty for anonymous events.
// The JSON form is the Kafka message value consumed by the Loki worker.
type Event struct {
	WorkspaceID string          `json:"workspaceId,omitempty"`
	UserID      string          `json:"userId,omitempty"`
	EventType   string          `json:"eventType"`
	Source      string          `json:"source"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewEvent returns an event of eventType from source stamped with the current UTC time.
// metadata is marshalled to JSON; a marshalling failure leaves Metadata empty.
func NewEvent(eventType, source string, metadata any) *Event {
	e := &Event{EventType: eventType, Source: source, CreatedAt: time.Now().UTC()}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			e.Metadata = raw
		}
	}
	return e
}
