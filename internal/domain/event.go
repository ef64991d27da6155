package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EventType identifies the kind of event being published.
type EventType string

const (
	EventToolStateChanged     EventType = "tool.state.changed"
	EventToolRequestStarted   EventType = "tool.request.started"
	EventToolRequestCompleted EventType = "tool.request.completed"
	EventToolRequestCancelled EventType = "tool.request.cancelled"
	EventToolRequestFailed    EventType = "tool.request.failed"
	EventToolSessionClosed    EventType = "tool.session.closed"
)

// Event is the envelope published on the event bus.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"session_id,omitempty"`
	Tool      ToolName        `json:"tool,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`

	// State is set on EventToolStateChanged; it is not serialized.
	State *ToolState `json:"-"`
}

// EventHandler is a callback invoked when an event is received.
type EventHandler func(ctx context.Context, event Event)

// EventBus provides a publish/subscribe mechanism for domain events.
type EventBus interface {
	// Publish sends an event to all matching subscribers.
	Publish(ctx context.Context, event Event)
	// Subscribe registers a handler for a specific event type.
	// Returns an unsubscribe function.
	Subscribe(eventType EventType, handler EventHandler) func()
	// SubscribeAll registers a handler that receives every event.
	// Returns an unsubscribe function.
	SubscribeAll(handler EventHandler) func()
	// Close drains in-flight handlers and prevents new publishes.
	Close()
}
