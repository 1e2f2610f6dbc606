// Package notify owns athlete-facing notifications: an explicit per-user
// queue of typed events consumed by the messaging surface, plus an email
// sender for out-of-band delivery.
package notify

import (
	"context"
	"time"
)

// EventType enumerates the synthetic messages the platform produces.
type EventType string

const (
	EventPurchaseConfirmed   EventType = "purchase_confirmed"
	EventDiagnosticsReceived EventType = "diagnostics_received"
	EventProgramReady        EventType = "program_ready"
	EventStallReminder       EventType = "stall_reminder"
)

// Event is one queued notification for a user.
type Event struct {
	Type      EventType `json:"type"`
	RequestID string    `json:"requestId,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Queue is a per-user notification queue with read-and-clear semantics:
// Drain returns all pending events and removes them, so each event is
// delivered to the messaging surface exactly once.
type Queue interface {
	Push(ctx context.Context, userID string, ev Event) error
	Drain(ctx context.Context, userID string) ([]Event, error)
}
