package lifecycle_test

import (
	"errors"
	"testing"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/lifecycle"
)

// TestNext_ForwardPath tests the happy path through the lifecycle.
func TestNext_ForwardPath(t *testing.T) {
	steps := []struct {
		from  domain.RequestStatus
		event lifecycle.Event
		want  domain.RequestStatus
	}{
		{domain.StatusPendingPayment, lifecycle.EventPaymentConfirmed, domain.StatusDiagnostic},
		{domain.StatusDiagnostic, lifecycle.EventDiagnosticsSubmitted, domain.StatusBuilding},
		{domain.StatusBuilding, lifecycle.EventProgramPublished, domain.StatusCompleted},
	}

	for _, s := range steps {
		got, err := lifecycle.Next(s.from, s.event)
		if err != nil {
			t.Fatalf("Next(%s, %s) unexpected error: %v", s.from, s.event, err)
		}
		if got != s.want {
			t.Errorf("Next(%s, %s) = %s, want %s", s.from, s.event, got, s.want)
		}
	}
}

// TestNext_RejectsInvalid tests that no backward or skipping transitions exist.
func TestNext_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		from  domain.RequestStatus
		event lifecycle.Event
	}{
		{"skip payment", domain.StatusPendingPayment, lifecycle.EventDiagnosticsSubmitted},
		{"skip to publish", domain.StatusPendingPayment, lifecycle.EventProgramPublished},
		{"publish from diagnostic", domain.StatusDiagnostic, lifecycle.EventProgramPublished},
		{"pay twice", domain.StatusDiagnostic, lifecycle.EventPaymentConfirmed},
		{"pay while building", domain.StatusBuilding, lifecycle.EventPaymentConfirmed},
		{"submit while building", domain.StatusBuilding, lifecycle.EventDiagnosticsSubmitted},
		{"anything after completed", domain.StatusCompleted, lifecycle.EventProgramPublished},
		{"cancel after completed", domain.StatusCompleted, lifecycle.EventCancelled},
		{"cancel after cancelled", domain.StatusCancelled, lifecycle.EventCancelled},
		{"pay after cancelled", domain.StatusCancelled, lifecycle.EventPaymentConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lifecycle.Next(tt.from, tt.event)
			if err == nil {
				t.Fatalf("Next(%s, %s) = %s, want error", tt.from, tt.event, got)
			}
			var invalid *lifecycle.InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Errorf("error type = %T, want *InvalidTransitionError", err)
			}
			if got != tt.from {
				t.Errorf("status changed to %s on invalid transition", got)
			}
		})
	}
}

// TestNext_CancelFromNonTerminal tests CANCELLED is reachable from every
// non-terminal state and from no terminal state.
func TestNext_CancelFromNonTerminal(t *testing.T) {
	for _, from := range []domain.RequestStatus{
		domain.StatusPendingPayment,
		domain.StatusDiagnostic,
		domain.StatusBuilding,
	} {
		got, err := lifecycle.Next(from, lifecycle.EventCancelled)
		if err != nil {
			t.Errorf("Next(%s, cancelled) unexpected error: %v", from, err)
		}
		if got != domain.StatusCancelled {
			t.Errorf("Next(%s, cancelled) = %s, want CANCELLED", from, got)
		}
	}

	for _, from := range []domain.RequestStatus{domain.StatusCompleted, domain.StatusCancelled} {
		if _, err := lifecycle.Next(from, lifecycle.EventCancelled); err == nil {
			t.Errorf("Next(%s, cancelled) succeeded, want error", from)
		}
	}
}

// TestApply tests that Apply mutates only on legal events.
func TestApply(t *testing.T) {
	req := &domain.CustomCourseRequest{Status: domain.StatusPendingPayment}

	if err := lifecycle.Apply(req, lifecycle.EventPaymentConfirmed); err != nil {
		t.Fatalf("Apply payment: %v", err)
	}
	if req.Status != domain.StatusDiagnostic {
		t.Fatalf("status = %s, want DIAGNOSTIC", req.Status)
	}

	if err := lifecycle.Apply(req, lifecycle.EventProgramPublished); err == nil {
		t.Fatal("Apply publish from DIAGNOSTIC succeeded, want error")
	}
	if req.Status != domain.StatusDiagnostic {
		t.Fatalf("status mutated on rejected event: %s", req.Status)
	}
}
