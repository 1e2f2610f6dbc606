package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/lifecycle"
	"peakform/coaching-app/internal/notify"
	"peakform/coaching-app/internal/payment"
	"peakform/coaching-app/internal/platform/logger"
	"peakform/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrRequestNotFound       = errors.New("bespoke request not found")
	ErrDisciplineNotFound    = errors.New("discipline not found")
	ErrRequestAccessDenied   = errors.New("access denied to this request")
	ErrDiagnosticsIncomplete = errors.New("not all required diagnostic tests are complete")
	ErrUnknownDiagnosticTest = errors.New("submission references an unknown diagnostic test")
	ErrCoachNotFound         = errors.New("coach user not found")
	ErrCoachNotRole          = errors.New("user found but is not a coach")
	ErrCoachAlreadyAssigned  = errors.New("coach is already assigned to this request")
)

// PaymentDeclinedError carries the gateway's decline reason. The request is
// left exactly as it was before the attempt.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Reason)
}

// IntakeInput is the athlete's side of request creation.
type IntakeInput struct {
	Sport         string
	Goal          string
	Biometrics    domain.Biometrics
	DurationWeeks int
}

// SubmissionInput is one answer in a diagnostics submission.
type SubmissionInput struct {
	TestID string
	Data   string
}

// --- Service Interface ---
type RequestService interface {
	// Intake & lifecycle
	Intake(ctx context.Context, athleteID primitive.ObjectID, in IntakeInput) (*domain.CustomCourseRequest, error)
	ConfirmPayment(ctx context.Context, athleteID, requestID primitive.ObjectID, paymentMethod string) (*domain.CustomCourseRequest, error)
	Cancel(ctx context.Context, requestID primitive.ObjectID) (*domain.CustomCourseRequest, error)

	// Diagnostics
	ListDiagnostics(ctx context.Context, athleteID, requestID primitive.ObjectID) ([]domain.DiagnosticTest, error)
	ConfigureDiagnostics(ctx context.Context, coachID, requestID primitive.ObjectID, tests []domain.DiagnosticTest) (*domain.CustomCourseRequest, error)
	SubmitDiagnostics(ctx context.Context, athleteID, requestID primitive.ObjectID, answers []SubmissionInput) (*domain.CustomCourseRequest, error)

	// Assignment & reads
	AssignCoach(ctx context.Context, requestID, coachID primitive.ObjectID) (*domain.CustomCourseRequest, error)
	GetForAthlete(ctx context.Context, athleteID, requestID primitive.ObjectID) (*domain.CustomCourseRequest, error)
	ListForAthlete(ctx context.Context, athleteID primitive.ObjectID) ([]domain.CustomCourseRequest, error)
	ListForCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.CustomCourseRequest, error)

	// Messaging surface
	DrainNotifications(ctx context.Context, userID primitive.ObjectID) ([]notify.Event, error)
}

// --- Service Implementation ---

type requestService struct {
	requestRepo    repository.RequestRepository
	userRepo       repository.UserRepository
	disciplineRepo repository.DisciplineRepository
	gateway        payment.Gateway
	queue          notify.Queue
	log            *logger.Logger
}

// NewRequestService creates a new instance of requestService.
func NewRequestService(
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	disciplineRepo repository.DisciplineRepository,
	gateway payment.Gateway,
	queue notify.Queue,
	log *logger.Logger,
) RequestService {
	return &requestService{
		requestRepo:    requestRepo,
		userRepo:       userRepo,
		disciplineRepo: disciplineRepo,
		gateway:        gateway,
		queue:          queue,
		log:            log.With("service", "request"),
	}
}

// === Intake & lifecycle ===

// Intake creates a bespoke request in PENDING_PAYMENT. The discipline must
// exist; an unknown code is an explicit error, never a fallback to some
// default discipline. Price comes from the discipline, diagnostics are cloned
// from its default set, and the request is routed to a coach accepting that
// discipline when one exists.
func (s *requestService) Intake(ctx context.Context, athleteID primitive.ObjectID, in IntakeInput) (*domain.CustomCourseRequest, error) {
	if athleteID == primitive.NilObjectID {
		return nil, errors.New("athlete ID is required")
	}
	if in.Sport == "" || in.Goal == "" {
		return nil, errors.New("sport and goal are required")
	}
	if in.Biometrics.HeightCm <= 0 || in.Biometrics.WeightKg <= 0 || in.Biometrics.Age <= 0 {
		return nil, errors.New("height, weight and age must be positive")
	}
	if in.DurationWeeks <= 0 {
		in.DurationWeeks = 8
	}

	athlete, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	discipline, err := s.disciplineRepo.GetByCode(ctx, in.Sport)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDisciplineNotFound
		}
		return nil, err
	}

	// Every request carries at least one diagnostic test from the moment it
	// exists, so the diagnostic phase can never be skipped.
	diagnostics := discipline.CloneDiagnostics()
	if len(diagnostics) == 0 {
		diagnostics = []domain.DiagnosticTest{domain.DefaultInjuryHistoryTest()}
	}

	req := &domain.CustomCourseRequest{
		AthleteID:     athleteID,
		AthleteName:   athlete.Name,
		Phone:         athlete.Phone,
		Sport:         discipline.Code,
		Goal:          in.Goal,
		Biometrics:    in.Biometrics,
		Price:         discipline.BasePrice,
		DurationWeeks: in.DurationWeeks,
		Status:        domain.StatusPendingPayment,
		Diagnostics:   diagnostics,
	}

	// Route to a coach for this discipline; first found becomes primary.
	coaches, err := s.userRepo.GetCoachesByDiscipline(ctx, discipline.Code)
	if err != nil {
		return nil, err
	}
	if len(coaches) > 0 {
		req.AssignedCoachIDs = []primitive.ObjectID{coaches[0].ID}
	}

	id, err := s.requestRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ID = id
	s.log.Info("request created", "request", id.Hex(), "sport", req.Sport, "athlete", athleteID.Hex())
	return req, nil
}

// ConfirmPayment authorizes the charge and advances the request into
// DIAGNOSTIC. On decline nothing is written and the decline reason is
// surfaced; a request outside PENDING_PAYMENT is rejected before the gateway
// is called.
func (s *requestService) ConfirmPayment(ctx context.Context, athleteID, requestID primitive.ObjectID, paymentMethod string) (*domain.CustomCourseRequest, error) {
	req, err := s.getOwned(ctx, athleteID, requestID)
	if err != nil {
		return nil, err
	}

	if !lifecycle.CanApply(req, lifecycle.EventPaymentConfirmed) {
		return nil, &lifecycle.InvalidTransitionError{From: req.Status, Event: lifecycle.EventPaymentConfirmed}
	}

	auth, err := s.gateway.Authorize(ctx, req.Price, paymentMethod)
	if err != nil {
		return nil, err
	}
	if !auth.Approved {
		s.log.Info("payment declined", "request", requestID.Hex(), "reason", auth.DeclineReason)
		return nil, &PaymentDeclinedError{Reason: auth.DeclineReason}
	}

	if err := lifecycle.Apply(req, lifecycle.EventPaymentConfirmed); err != nil {
		return nil, err
	}
	req.TransactionID = auth.TransactionID

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.pushEvent(ctx, req.AthleteID, notify.Event{
		Type:      notify.EventPurchaseConfirmed,
		RequestID: req.ID.Hex(),
		Message:   "Payment received. Complete your diagnostic tests so your coach can get started.",
	})
	s.log.Info("payment confirmed", "request", requestID.Hex(), "tx", auth.TransactionID)
	return req, nil
}

// Cancel moves a non-terminal request into CANCELLED.
func (s *requestService) Cancel(ctx context.Context, requestID primitive.ObjectID) (*domain.CustomCourseRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if err := lifecycle.Apply(req, lifecycle.EventCancelled); err != nil {
		return nil, err
	}
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.log.Info("request cancelled", "request", requestID.Hex())
	return req, nil
}

// === Diagnostics ===

// ListDiagnostics enumerates the request's tests. A request that reaches
// this point with no tests at all gets the default Injury History question
// injected and persisted, so there is always at least one thing to answer
// and submissions have a real test id to reference.
func (s *requestService) ListDiagnostics(ctx context.Context, athleteID, requestID primitive.ObjectID) ([]domain.DiagnosticTest, error) {
	req, err := s.getOwned(ctx, athleteID, requestID)
	if err != nil {
		return nil, err
	}

	if len(req.Diagnostics) == 0 {
		req.Diagnostics = []domain.DiagnosticTest{domain.DefaultInjuryHistoryTest()}
		if err := s.requestRepo.Update(ctx, req); err != nil {
			return nil, err
		}
	}
	return req.Diagnostics, nil
}

// ConfigureDiagnostics lets an assigned coach replace the request's test set
// while the athlete has not submitted yet.
func (s *requestService) ConfigureDiagnostics(ctx context.Context, coachID, requestID primitive.ObjectID, tests []domain.DiagnosticTest) (*domain.CustomCourseRequest, error) {
	req, err := s.getAssigned(ctx, coachID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.StatusPendingPayment && req.Status != domain.StatusDiagnostic {
		return nil, &lifecycle.InvalidTransitionError{From: req.Status, Event: "configure_diagnostics"}
	}

	// An empty set would let the athlete advance with no submissions at all.
	if len(tests) == 0 {
		return nil, errors.New("at least one diagnostic test is required")
	}
	for i := range tests {
		if tests[i].ID == "" {
			return nil, errors.New("diagnostic test id is required")
		}
		if tests[i].Title == "" {
			return nil, errors.New("diagnostic test title is required")
		}
	}

	req.Diagnostics = tests
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// SubmitDiagnostics is all-or-nothing: every answer must reference a known
// test and every required test must end up complete, otherwise nothing is
// recorded and the request stays in DIAGNOSTIC. On success the submissions
// are stored (one per test, last write wins) and the request advances to
// BUILDING as an explicit, persisted transition.
func (s *requestService) SubmitDiagnostics(ctx context.Context, athleteID, requestID primitive.ObjectID, answers []SubmissionInput) (*domain.CustomCourseRequest, error) {
	req, err := s.getOwned(ctx, athleteID, requestID)
	if err != nil {
		return nil, err
	}

	if !lifecycle.CanApply(req, lifecycle.EventDiagnosticsSubmitted) {
		return nil, &lifecycle.InvalidTransitionError{From: req.Status, Event: lifecycle.EventDiagnosticsSubmitted}
	}

	// Intake guarantees at least one test, but records written before that
	// guarantee held must not slip through with an empty set.
	if len(req.Diagnostics) == 0 {
		req.Diagnostics = []domain.DiagnosticTest{domain.DefaultInjuryHistoryTest()}
	}

	known := make(map[string]bool, len(req.Diagnostics))
	for _, t := range req.Diagnostics {
		known[t.ID] = true
	}
	for _, a := range answers {
		if !known[a.TestID] {
			return nil, ErrUnknownDiagnosticTest
		}
	}

	// Stage the writes on a scratch copy so an incomplete set leaves the
	// request untouched.
	staged := *req
	staged.Submissions = append([]domain.AthleteSubmission(nil), req.Submissions...)
	now := time.Now().UTC()
	for _, a := range answers {
		staged.PutSubmission(domain.AthleteSubmission{
			TestID:      a.TestID,
			Data:        a.Data,
			SubmittedAt: now,
		})
	}

	if !staged.DiagnosticsComplete() {
		return nil, ErrDiagnosticsIncomplete
	}

	req.Submissions = staged.Submissions
	if err := lifecycle.Apply(req, lifecycle.EventDiagnosticsSubmitted); err != nil {
		return nil, err
	}
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.pushEvent(ctx, req.AthleteID, notify.Event{
		Type:      notify.EventDiagnosticsReceived,
		RequestID: req.ID.Hex(),
		Message:   "Diagnostics received. Your coach is now building your program.",
	})
	s.log.Info("diagnostics submitted", "request", requestID.Hex(), "answers", len(answers))
	return req, nil
}

// === Assignment & reads ===

// AssignCoach appends a coach to the request's ordered assignment list. The
// first assigned coach is the primary.
func (s *requestService) AssignCoach(ctx context.Context, requestID, coachID primitive.ObjectID) (*domain.CustomCourseRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	coach, err := s.userRepo.GetByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	if !coach.IsCoach() {
		return nil, ErrCoachNotRole
	}
	if req.IsAssignedCoach(coachID) {
		return nil, ErrCoachAlreadyAssigned
	}

	req.AssignedCoachIDs = append(req.AssignedCoachIDs, coachID)
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// GetForAthlete retrieves a request owned by the athlete.
func (s *requestService) GetForAthlete(ctx context.Context, athleteID, requestID primitive.ObjectID) (*domain.CustomCourseRequest, error) {
	return s.getOwned(ctx, athleteID, requestID)
}

// ListForAthlete retrieves the athlete's requests.
func (s *requestService) ListForAthlete(ctx context.Context, athleteID primitive.ObjectID) ([]domain.CustomCourseRequest, error) {
	return s.requestRepo.GetByAthleteID(ctx, athleteID)
}

// ListForCoach retrieves requests the coach is assigned to.
func (s *requestService) ListForCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.CustomCourseRequest, error) {
	return s.requestRepo.GetByCoachID(ctx, coachID)
}

// === Messaging surface ===

// DrainNotifications returns and clears the user's pending events. This is
// what the messaging view calls on open.
func (s *requestService) DrainNotifications(ctx context.Context, userID primitive.ObjectID) ([]notify.Event, error) {
	return s.queue.Drain(ctx, userID.Hex())
}

// --- helpers ---

func (s *requestService) getOwned(ctx context.Context, athleteID, requestID primitive.ObjectID) (*domain.CustomCourseRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.AthleteID != athleteID {
		return nil, ErrRequestAccessDenied
	}
	return req, nil
}

func (s *requestService) getAssigned(ctx context.Context, coachID, requestID primitive.ObjectID) (*domain.CustomCourseRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if !req.IsAssignedCoach(coachID) {
		return nil, ErrRequestAccessDenied
	}
	return req, nil
}

// pushEvent queues a notification; delivery problems are logged, never
// propagated, because the underlying state change already happened.
func (s *requestService) pushEvent(ctx context.Context, userID primitive.ObjectID, ev notify.Event) {
	if err := s.queue.Push(ctx, userID.Hex(), ev); err != nil {
		s.log.Warn("could not queue notification", "user", userID.Hex(), "type", ev.Type, "err", err)
	}
}
