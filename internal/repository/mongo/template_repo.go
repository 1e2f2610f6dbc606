package mongo

import (
	"context"
	"errors"
	"time"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	workoutTemplateCollectionName = "workout_templates"
	mealTemplateCollectionName    = "meal_templates"
)

// mongoTemplateRepository implements repository.TemplateRepository using MongoDB.
type mongoTemplateRepository struct {
	workouts *mongo.Collection
	meals    *mongo.Collection
}

// NewMongoTemplateRepository creates a new instance of mongoTemplateRepository.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		workouts: db.Collection(workoutTemplateCollectionName),
		meals:    db.Collection(mealTemplateCollectionName),
	}
}

// CreateWorkout inserts a new workout template.
func (r *mongoTemplateRepository) CreateWorkout(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	if tpl.CoachID == primitive.NilObjectID || tpl.Name == "" {
		return primitive.NilObjectID, errors.New("coach ID and name are required")
	}

	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	result, err := r.workouts.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetWorkoutByID retrieves a workout template.
func (r *mongoTemplateRepository) GetWorkoutByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	var tpl domain.WorkoutTemplate
	err := r.workouts.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// GetWorkoutsByCoachID retrieves all workout templates owned by a coach.
func (r *mongoTemplateRepository) GetWorkoutsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	cursor, err := r.workouts.Find(ctx, bson.M{"coachId": coachID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.WorkoutTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// CreateMeal inserts a new meal template.
func (r *mongoTemplateRepository) CreateMeal(ctx context.Context, tpl *domain.MealTemplate) (primitive.ObjectID, error) {
	if tpl.CoachID == primitive.NilObjectID || tpl.Name == "" {
		return primitive.NilObjectID, errors.New("coach ID and name are required")
	}

	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	result, err := r.meals.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetMealByID retrieves a meal template.
func (r *mongoTemplateRepository) GetMealByID(ctx context.Context, id primitive.ObjectID) (*domain.MealTemplate, error) {
	var tpl domain.MealTemplate
	err := r.meals.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// GetMealsByCoachID retrieves all meal templates owned by a coach.
func (r *mongoTemplateRepository) GetMealsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.MealTemplate, error) {
	cursor, err := r.meals.Find(ctx, bson.M{"coachId": coachID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.MealTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// EnsureTemplateIndexes creates necessary indexes for both template collections.
func EnsureTemplateIndexes(ctx context.Context, workouts, meals *mongo.Collection) {
	idx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = workouts.Indexes().CreateMany(ctx, idx)
	_, _ = meals.Indexes().CreateMany(ctx, idx)
}
