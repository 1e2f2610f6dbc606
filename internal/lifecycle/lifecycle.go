// Package lifecycle is the single authority for advancing a bespoke request
// through its states. Every mutation path goes through Apply; nothing else
// writes CustomCourseRequest.Status.
package lifecycle

import (
	"fmt"

	"peakform/coaching-app/internal/domain"
)

// Event names a trigger that may advance a request's status.
type Event string

const (
	EventPaymentConfirmed     Event = "payment_confirmed"
	EventDiagnosticsSubmitted Event = "diagnostics_submitted"
	EventProgramPublished     Event = "program_published"
	EventCancelled            Event = "cancelled"
)

// InvalidTransitionError reports an event that has no legal transition from
// the request's current status.
type InvalidTransitionError struct {
	From  domain.RequestStatus
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: event %q from status %q", e.Event, e.From)
}

// transitions maps (from, event) to the next status. Strictly forward;
// there are no back-transitions and terminal states accept nothing.
var transitions = map[domain.RequestStatus]map[Event]domain.RequestStatus{
	domain.StatusPendingPayment: {
		EventPaymentConfirmed: domain.StatusDiagnostic,
		EventCancelled:        domain.StatusCancelled,
	},
	domain.StatusDiagnostic: {
		EventDiagnosticsSubmitted: domain.StatusBuilding,
		EventCancelled:            domain.StatusCancelled,
	},
	domain.StatusBuilding: {
		EventProgramPublished: domain.StatusCompleted,
		EventCancelled:        domain.StatusCancelled,
	},
}

// Next returns the status reached by applying event from the given status.
func Next(from domain.RequestStatus, event Event) (domain.RequestStatus, error) {
	if next, ok := transitions[from][event]; ok {
		return next, nil
	}
	return from, &InvalidTransitionError{From: from, Event: event}
}

// Apply advances the request's status in place. On an illegal event the
// request is left untouched and an InvalidTransitionError is returned.
func Apply(req *domain.CustomCourseRequest, event Event) error {
	next, err := Next(req.Status, event)
	if err != nil {
		return err
	}
	req.Status = next
	return nil
}

// CanApply reports whether event is legal from the request's current status.
func CanApply(req *domain.CustomCourseRequest, event Event) bool {
	_, err := Next(req.Status, event)
	return err == nil
}
