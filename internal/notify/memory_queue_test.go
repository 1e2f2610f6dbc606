package notify_test

import (
	"context"
	"testing"

	"peakform/coaching-app/internal/notify"
)

// TestDrain_ReadAndClear tests that draining removes delivered events.
func TestDrain_ReadAndClear(t *testing.T) {
	ctx := context.Background()
	q := notify.NewMemoryQueue()

	if err := q.Push(ctx, "u1", notify.Event{Type: notify.EventPurchaseConfirmed, RequestID: "r1"}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := q.Push(ctx, "u1", notify.Event{Type: notify.EventDiagnosticsReceived, RequestID: "r1"}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := q.Push(ctx, "u2", notify.Event{Type: notify.EventStallReminder, RequestID: "r2"}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	events, err := q.Drain(ctx, "u1")
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Type != notify.EventPurchaseConfirmed || events[1].Type != notify.EventDiagnosticsReceived {
		t.Errorf("events out of order: %v", events)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped on push")
	}

	// Second drain must be empty: delivery is exactly once.
	again, err := q.Drain(ctx, "u1")
	if err != nil {
		t.Fatalf("Drain again: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second drain returned %d events, want 0", len(again))
	}

	// Other users' queues are untouched.
	other, err := q.Drain(ctx, "u2")
	if err != nil {
		t.Fatalf("Drain u2: %v", err)
	}
	if len(other) != 1 {
		t.Errorf("u2 drain returned %d events, want 1", len(other))
	}
}
