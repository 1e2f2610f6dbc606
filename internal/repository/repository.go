package repository

import (
	"context"
	"time"

	"peakform/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound        = RepositoryError("not found")
	ErrUpdateFailed    = RepositoryError("update failed")
	ErrDeleteFailed    = RepositoryError("delete failed")
	ErrVersionConflict = RepositoryError("version conflict")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetCoachesByDiscipline(ctx context.Context, code string) ([]domain.User, error)
}

// RequestRepository defines the interface for interacting with bespoke
// request data. Update performs an optimistic-concurrency check: the stored
// document's version must match the in-memory one or ErrVersionConflict is
// returned and nothing is written.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.CustomCourseRequest) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CustomCourseRequest, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.CustomCourseRequest, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.CustomCourseRequest, error)
	GetStalled(ctx context.Context, statuses []domain.RequestStatus, idleSince time.Time) ([]domain.CustomCourseRequest, error)
	Update(ctx context.Context, req *domain.CustomCourseRequest) error
}

// AssetRepository defines the interface for the shared media library.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Asset, error)
	// ListVisible returns public assets plus the viewer's own; admins get
	// everything. The visibility rule is enforced in the query, not after.
	ListVisible(ctx context.Context, viewerID primitive.ObjectID, role domain.Role) ([]domain.Asset, error)
	Update(ctx context.Context, asset *domain.Asset) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TemplateRepository defines the interface for reusable workout and meal
// templates.
type TemplateRepository interface {
	CreateWorkout(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error)
	GetWorkoutByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
	GetWorkoutsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error)
	CreateMeal(ctx context.Context, tpl *domain.MealTemplate) (primitive.ObjectID, error)
	GetMealByID(ctx context.Context, id primitive.ObjectID) (*domain.MealTemplate, error)
	GetMealsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.MealTemplate, error)
}

// DisciplineRepository defines the interface for sport/modality records.
type DisciplineRepository interface {
	Create(ctx context.Context, d *domain.Discipline) (primitive.ObjectID, error)
	GetByCode(ctx context.Context, code string) (*domain.Discipline, error)
	List(ctx context.Context) ([]domain.Discipline, error)
	Update(ctx context.Context, d *domain.Discipline) error
}
