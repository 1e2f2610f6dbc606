// Package scheduler runs the stall-reminder job. Requests left in
// DIAGNOSTIC (athlete never submitted) or BUILDING (coach never published)
// are silent stalls, not errors; the job periodically nudges the responsible
// party instead of letting them sit forever.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/notify"
	"peakform/coaching-app/internal/platform/logger"
	"peakform/coaching-app/internal/repository"

	"github.com/robfig/cron"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stalledStatuses are the states a request can silently stall in.
var stalledStatuses = []domain.RequestStatus{
	domain.StatusDiagnostic,
	domain.StatusBuilding,
}

// Reminder scans for stalled requests on a cron schedule and queues
// reminder notifications. A request is nudged at most once per stall window,
// not on every tick it stays stalled; a process restart may repeat one nudge.
type Reminder struct {
	requestRepo repository.RequestRepository
	queue       notify.Queue
	log         *logger.Logger
	stallAfter  time.Duration
	cron        *cron.Cron

	mu       sync.Mutex
	reminded map[primitive.ObjectID]time.Time
}

// NewReminder creates the reminder job. Call Start to begin scanning.
func NewReminder(requestRepo repository.RequestRepository, queue notify.Queue, log *logger.Logger, stallAfter time.Duration) *Reminder {
	return &Reminder{
		requestRepo: requestRepo,
		queue:       queue,
		log:         log.With("component", "stall_reminder"),
		stallAfter:  stallAfter,
		cron:        cron.New(),
		reminded:    make(map[primitive.ObjectID]time.Time),
	}
}

// Start schedules the scan on the given cron spec (e.g. "@hourly").
func (r *Reminder) Start(spec string) error {
	if err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		r.RunOnce(ctx)
	}); err != nil {
		return err
	}
	r.cron.Start()
	r.log.Info("stall reminder scheduled", "spec", spec, "stall_after", r.stallAfter)
	return nil
}

// Stop halts the schedule. A scan already in flight finishes.
func (r *Reminder) Stop() {
	r.cron.Stop()
}

// RunOnce performs a single scan. Exported so it can be triggered manually
// and exercised directly in tests.
func (r *Reminder) RunOnce(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.stallAfter)
	stalled, err := r.requestRepo.GetStalled(ctx, stalledStatuses, cutoff)
	if err != nil {
		r.log.Error("stall scan failed", "err", err)
		return
	}

	now := time.Now().UTC()
	sent := 0
	for i := range stalled {
		req := &stalled[i]
		target, message := reminderFor(req)
		if target.IsZero() {
			continue
		}
		if !r.shouldRemind(req.ID, now) {
			continue
		}
		ev := notify.Event{
			Type:      notify.EventStallReminder,
			RequestID: req.ID.Hex(),
			Message:   message,
		}
		if err := r.queue.Push(ctx, target.Hex(), ev); err != nil {
			r.log.Warn("could not queue reminder", "request", req.ID.Hex(), "err", err)
			continue
		}
		sent++
	}
	if sent > 0 {
		r.log.Info("stall scan complete", "reminders", sent)
	}
}

// shouldRemind records the nudge and reports whether one is due: at most one
// per request per stall window.
func (r *Reminder) shouldRemind(id primitive.ObjectID, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if last, ok := r.reminded[id]; ok && now.Sub(last) < r.stallAfter {
		return false
	}
	r.reminded[id] = now
	return true
}

// reminderFor picks who to nudge: the athlete while diagnostics are
// outstanding, the primary coach while the build is outstanding.
func reminderFor(req *domain.CustomCourseRequest) (primitive.ObjectID, string) {
	switch req.Status {
	case domain.StatusDiagnostic:
		return req.AthleteID, "Your diagnostic tests are still waiting. Complete them so your coach can start building."
	case domain.StatusBuilding:
		if coachID, ok := req.PrimaryCoachID(); ok {
			return coachID, fmt.Sprintf("Request for %s has been waiting on a program since %s.", req.AthleteName, req.UpdatedAt.Format("Jan 2"))
		}
	}
	return primitive.NilObjectID, ""
}
