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

const requestCollectionName = "custom_requests"

// mongoRequestRepository implements repository.RequestRepository using MongoDB.
type mongoRequestRepository struct {
	collection *mongo.Collection
}

// NewMongoRequestRepository creates a new instance of mongoRequestRepository.
func NewMongoRequestRepository(db *mongo.Database) repository.RequestRepository {
	return &mongoRequestRepository{
		collection: db.Collection(requestCollectionName),
	}
}

// Create inserts a new bespoke request.
func (r *mongoRequestRepository) Create(ctx context.Context, req *domain.CustomCourseRequest) (primitive.ObjectID, error) {
	if req.AthleteID == primitive.NilObjectID || req.Sport == "" {
		return primitive.NilObjectID, errors.New("athlete ID and sport are required")
	}

	req.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	req.Version = 1

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a request by its ObjectID. A missing id is an explicit
// ErrNotFound, never a fallback to some other record.
func (r *mongoRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CustomCourseRequest, error) {
	var req domain.CustomCourseRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// GetByAthleteID retrieves all requests created by an athlete, newest first.
func (r *mongoRequestRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.CustomCourseRequest, error) {
	return r.find(ctx, bson.M{"athleteId": athleteID})
}

// GetByCoachID retrieves all requests the coach is assigned to, newest first.
func (r *mongoRequestRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.CustomCourseRequest, error) {
	return r.find(ctx, bson.M{"assignedCoachIds": coachID})
}

// GetStalled retrieves requests sitting in one of the given statuses with no
// write since idleSince. Used by the reminder scheduler.
func (r *mongoRequestRepository) GetStalled(ctx context.Context, statuses []domain.RequestStatus, idleSince time.Time) ([]domain.CustomCourseRequest, error) {
	filter := bson.M{
		"status":    bson.M{"$in": statuses},
		"updatedAt": bson.M{"$lt": idleSince},
	}
	return r.find(ctx, filter)
}

func (r *mongoRequestRepository) find(ctx context.Context, filter bson.M) ([]domain.CustomCourseRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []domain.CustomCourseRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// Update replaces the stored document if and only if its version still
// matches req.Version. On success the stored version (and req.Version) are
// bumped by one; on a mismatch ErrVersionConflict is returned and nothing is
// written, so a stale coach session cannot overwrite a newer one.
func (r *mongoRequestRepository) Update(ctx context.Context, req *domain.CustomCourseRequest) error {
	if req.ID == primitive.NilObjectID {
		return errors.New("request ID is required for update")
	}

	currentVersion := req.Version
	req.Version = currentVersion + 1
	req.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": req.ID, "version": currentVersion}
	result, err := r.collection.ReplaceOne(ctx, filter, req)
	if err != nil {
		req.Version = currentVersion
		return err
	}
	if result.MatchedCount == 0 {
		req.Version = currentVersion
		// Distinguish a missing document from a stale version.
		if _, getErr := r.GetByID(ctx, req.ID); errors.Is(getErr, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}
	return nil
}

// EnsureRequestIndexes creates necessary indexes for the requests collection.
func EnsureRequestIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "assignedCoachIds", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
