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

const disciplineCollectionName = "disciplines"

// mongoDisciplineRepository implements repository.DisciplineRepository using MongoDB.
type mongoDisciplineRepository struct {
	collection *mongo.Collection
}

// NewMongoDisciplineRepository creates a new instance of mongoDisciplineRepository.
func NewMongoDisciplineRepository(db *mongo.Database) repository.DisciplineRepository {
	return &mongoDisciplineRepository{
		collection: db.Collection(disciplineCollectionName),
	}
}

// Create inserts a new discipline.
func (r *mongoDisciplineRepository) Create(ctx context.Context, d *domain.Discipline) (primitive.ObjectID, error) {
	if d.Code == "" || d.Name == "" {
		return primitive.NilObjectID, errors.New("discipline code and name are required")
	}

	d.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, d)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, errors.New("discipline with this code already exists")
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByCode retrieves a discipline by its unique code. Unknown codes are an
// explicit ErrNotFound, never a fallback to the first record.
func (r *mongoDisciplineRepository) GetByCode(ctx context.Context, code string) (*domain.Discipline, error) {
	var d domain.Discipline
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// List retrieves all disciplines ordered by name.
func (r *mongoDisciplineRepository) List(ctx context.Context) ([]domain.Discipline, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var disciplines []domain.Discipline
	if err = cursor.All(ctx, &disciplines); err != nil {
		return nil, err
	}
	return disciplines, nil
}

// Update replaces a discipline document.
func (r *mongoDisciplineRepository) Update(ctx context.Context, d *domain.Discipline) error {
	if d.ID == primitive.NilObjectID {
		return errors.New("discipline ID is required for update")
	}
	d.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureDisciplineIndexes creates necessary indexes for the disciplines collection.
func EnsureDisciplineIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
