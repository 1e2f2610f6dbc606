package service

import (
	"context"
	"errors"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/lifecycle"
	"peakform/coaching-app/internal/notify"
	"peakform/coaching-app/internal/platform/logger"
	"peakform/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound     = errors.New("template not found")
	ErrTemplateAccessDenied = errors.New("access denied to this template")
	ErrEmptyProgram         = errors.New("cannot publish a program with no weeks")
	ErrDayNotFound          = errors.New("week or day not found in the program")
	ErrNotBuilding          = errors.New("request is not in the building stage")
)

// BuilderView is what the coach sees when opening a request to build: the
// athlete's submissions paired with their tests, read-only, plus the content
// authored so far.
type BuilderView struct {
	Request     *domain.CustomCourseRequest
	Diagnostics []DiagnosticAnswer
}

// DiagnosticAnswer pairs a test with the athlete's submission for it.
type DiagnosticAnswer struct {
	Test       domain.DiagnosticTest
	Submission *domain.AthleteSubmission // nil when an optional test was skipped
}

// --- Service Interface ---
type BuilderService interface {
	// Authoring
	Open(ctx context.Context, coachID, requestID primitive.ObjectID) (*BuilderView, error)
	SetWeeks(ctx context.Context, coachID, requestID primitive.ObjectID, weeks []domain.WeekProgram, version int64) (*domain.CustomCourseRequest, error)
	SetMealPlan(ctx context.Context, coachID, requestID primitive.ObjectID, plan *domain.MealPlan, version int64) (*domain.CustomCourseRequest, error)
	Publish(ctx context.Context, coachID, requestID primitive.ObjectID, version int64) (*domain.CustomCourseRequest, error)

	// Template library
	ApplyWorkoutTemplate(ctx context.Context, coachID, requestID, templateID primitive.ObjectID, weekIndex, dayIndex int) (*domain.CustomCourseRequest, error)
	ApplyMealTemplate(ctx context.Context, coachID, requestID, templateID primitive.ObjectID) (*domain.CustomCourseRequest, error)
	CreateWorkoutTemplate(ctx context.Context, coachID primitive.ObjectID, name string, exercises []domain.Exercise) (*domain.WorkoutTemplate, error)
	CreateMealTemplate(ctx context.Context, coachID primitive.ObjectID, name string, meals []domain.Meal) (*domain.MealTemplate, error)
	ListWorkoutTemplates(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error)
	ListMealTemplates(ctx context.Context, coachID primitive.ObjectID) ([]domain.MealTemplate, error)
}

// --- Service Implementation ---

type builderService struct {
	requestRepo  repository.RequestRepository
	templateRepo repository.TemplateRepository
	userRepo     repository.UserRepository
	queue        notify.Queue
	sender       notify.Sender
	log          *logger.Logger
}

// NewBuilderService creates a new instance of builderService.
func NewBuilderService(
	requestRepo repository.RequestRepository,
	templateRepo repository.TemplateRepository,
	userRepo repository.UserRepository,
	queue notify.Queue,
	sender notify.Sender,
	log *logger.Logger,
) BuilderService {
	return &builderService{
		requestRepo:  requestRepo,
		templateRepo: templateRepo,
		userRepo:     userRepo,
		queue:        queue,
		sender:       sender,
		log:          log.With("service", "builder"),
	}
}

// === Authoring ===

// Open loads a request for building and pairs each diagnostic test with the
// athlete's submission so the coach can review before authoring.
func (s *builderService) Open(ctx context.Context, coachID, requestID primitive.ObjectID) (*BuilderView, error) {
	req, err := s.getBuildable(ctx, coachID, requestID)
	if err != nil {
		return nil, err
	}

	answers := make([]DiagnosticAnswer, 0, len(req.Diagnostics))
	for _, test := range req.Diagnostics {
		sub, _ := req.SubmissionFor(test.ID)
		answers = append(answers, DiagnosticAnswer{Test: test, Submission: sub})
	}
	return &BuilderView{Request: req, Diagnostics: answers}, nil
}

// SetWeeks replaces the authored training content wholesale. There is no
// versioning of content itself; the request version guards against a stale
// coach session overwriting a newer one.
func (s *builderService) SetWeeks(ctx context.Context, coachID, requestID primitive.ObjectID, weeks []domain.WeekProgram, version int64) (*domain.CustomCourseRequest, error) {
	req, err := s.getBuildable(ctx, coachID, requestID)
	if err != nil {
		return nil, err
	}
	req.Version = version
	req.Weeks = weeks

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// SetMealPlan attaches (or removes, with nil) the nutrition content.
func (s *builderService) SetMealPlan(ctx context.Context, coachID, requestID primitive.ObjectID, plan *domain.MealPlan, version int64) (*domain.CustomCourseRequest, error) {
	req, err := s.getBuildable(ctx, coachID, requestID)
	if err != nil {
		return nil, err
	}
	req.Version = version
	req.MealPlan = plan
	req.HasMealPlan = plan != nil

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Publish completes the request. It refuses an empty program, harvests
// exercises flagged for the library into reusable templates, and notifies
// the athlete both in-app and by email. Publishing an already-completed
// request is a no-op: the authored content is left exactly as it was.
func (s *builderService) Publish(ctx context.Context, coachID, requestID primitive.ObjectID, version int64) (*domain.CustomCourseRequest, error) {
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
	if req.Status == domain.StatusCompleted {
		return req, nil
	}
	if req.Status != domain.StatusBuilding {
		return nil, ErrNotBuilding
	}
	if len(req.Weeks) == 0 {
		return nil, ErrEmptyProgram
	}

	req.Version = version
	if err := lifecycle.Apply(req, lifecycle.EventProgramPublished); err != nil {
		return nil, err
	}
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.harvestLibraryExercises(ctx, coachID, req)

	ev := notify.Event{
		Type:      notify.EventProgramReady,
		RequestID: req.ID.Hex(),
		Message:   "Your bespoke program is ready. Open it in the app.",
	}
	if err := s.queue.Push(ctx, req.AthleteID.Hex(), ev); err != nil {
		s.log.Warn("could not queue notification", "user", req.AthleteID.Hex(), "err", err)
	}
	if athlete, err := s.userRepo.GetByID(ctx, req.AthleteID); err == nil {
		if err := s.sender.Send(ctx, athlete.Email, "Your program is ready", ev.Message); err != nil {
			s.log.Warn("could not email athlete", "email", athlete.Email, "err", err)
		}
	}

	s.log.Info("program published", "request", requestID.Hex(), "weeks", len(req.Weeks))
	return req, nil
}

// harvestLibraryExercises copies exercises flagged SaveToLibrary into the
// coach's template library. Failures are logged, not propagated: the publish
// already succeeded.
func (s *builderService) harvestLibraryExercises(ctx context.Context, coachID primitive.ObjectID, req *domain.CustomCourseRequest) {
	for _, week := range req.Weeks {
		for _, day := range week.Days {
			var flagged []domain.Exercise
			for _, ex := range day.Exercises {
				if ex.SaveToLibrary {
					flagged = append(flagged, ex.Clone())
				}
			}
			if len(flagged) == 0 {
				continue
			}
			tpl := &domain.WorkoutTemplate{
				CoachID:   coachID,
				Name:      day.Title,
				Exercises: flagged,
			}
			if _, err := s.templateRepo.CreateWorkout(ctx, tpl); err != nil {
				s.log.Warn("could not save day to library", "day", day.Title, "err", err)
			}
		}
	}
}

// === Template library ===

// ApplyWorkoutTemplate appends deep copies of the template's exercises to
// the addressed day. The clone carries fresh ids, so later edits to the day
// never reach the template, and applying twice yields independent copies.
func (s *builderService) ApplyWorkoutTemplate(ctx context.Context, coachID, requestID, templateID primitive.ObjectID, weekIndex, dayIndex int) (*domain.CustomCourseRequest, error) {
	req, err := s.getBuildable(ctx, coachID, requestID)
	if err != nil {
		return nil, err
	}
	tpl, err := s.getOwnedWorkoutTemplate(ctx, coachID, templateID)
	if err != nil {
		return nil, err
	}

	if weekIndex < 0 || weekIndex >= len(req.Weeks) {
		return nil, ErrDayNotFound
	}
	week := &req.Weeks[weekIndex]
	if dayIndex < 0 || dayIndex >= len(week.Days) {
		return nil, ErrDayNotFound
	}

	day := &week.Days[dayIndex]
	day.Exercises = append(day.Exercises, tpl.CloneExercises()...)

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ApplyMealTemplate appends deep copies of the template's meals to the
// request's meal plan, creating one when absent.
func (s *builderService) ApplyMealTemplate(ctx context.Context, coachID, requestID, templateID primitive.ObjectID) (*domain.CustomCourseRequest, error) {
	req, err := s.getBuildable(ctx, coachID, requestID)
	if err != nil {
		return nil, err
	}

	tpl, err := s.templateRepo.GetMealByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.CoachID != coachID {
		return nil, ErrTemplateAccessDenied
	}

	if req.MealPlan == nil {
		req.MealPlan = &domain.MealPlan{Title: tpl.Name}
		req.HasMealPlan = true
	}
	req.MealPlan.Meals = append(req.MealPlan.Meals, tpl.CloneMeals()...)

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// CreateWorkoutTemplate stores a reusable day's worth of exercises.
func (s *builderService) CreateWorkoutTemplate(ctx context.Context, coachID primitive.ObjectID, name string, exercises []domain.Exercise) (*domain.WorkoutTemplate, error) {
	if name == "" {
		return nil, errors.New("template name is required")
	}
	tpl := &domain.WorkoutTemplate{
		CoachID:   coachID,
		Name:      name,
		Exercises: exercises,
	}
	id, err := s.templateRepo.CreateWorkout(ctx, tpl)
	if err != nil {
		return nil, err
	}
	tpl.ID = id
	return tpl, nil
}

// CreateMealTemplate stores a reusable set of meals.
func (s *builderService) CreateMealTemplate(ctx context.Context, coachID primitive.ObjectID, name string, meals []domain.Meal) (*domain.MealTemplate, error) {
	if name == "" {
		return nil, errors.New("template name is required")
	}
	tpl := &domain.MealTemplate{
		CoachID: coachID,
		Name:    name,
		Meals:   meals,
	}
	id, err := s.templateRepo.CreateMeal(ctx, tpl)
	if err != nil {
		return nil, err
	}
	tpl.ID = id
	return tpl, nil
}

// ListWorkoutTemplates retrieves the coach's workout templates.
func (s *builderService) ListWorkoutTemplates(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	return s.templateRepo.GetWorkoutsByCoachID(ctx, coachID)
}

// ListMealTemplates retrieves the coach's meal templates.
func (s *builderService) ListMealTemplates(ctx context.Context, coachID primitive.ObjectID) ([]domain.MealTemplate, error) {
	return s.templateRepo.GetMealsByCoachID(ctx, coachID)
}

// --- helpers ---

// getBuildable loads a request the coach is assigned to and checks it is in
// the BUILDING stage.
func (s *builderService) getBuildable(ctx context.Context, coachID, requestID primitive.ObjectID) (*domain.CustomCourseRequest, error) {
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
	if req.Status != domain.StatusBuilding {
		return nil, ErrNotBuilding
	}
	return req, nil
}

func (s *builderService) getOwnedWorkoutTemplate(ctx context.Context, coachID, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	tpl, err := s.templateRepo.GetWorkoutByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.CoachID != coachID {
		return nil, ErrTemplateAccessDenied
	}
	return tpl, nil
}
