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

const assetCollectionName = "assets"

// mongoAssetRepository implements repository.AssetRepository using MongoDB.
type mongoAssetRepository struct {
	collection *mongo.Collection
}

// NewMongoAssetRepository creates a new instance of mongoAssetRepository.
func NewMongoAssetRepository(db *mongo.Database) repository.AssetRepository {
	return &mongoAssetRepository{
		collection: db.Collection(assetCollectionName),
	}
}

// Create inserts a new asset metadata document.
func (r *mongoAssetRepository) Create(ctx context.Context, asset *domain.Asset) (primitive.ObjectID, error) {
	if asset.CreatorID == primitive.NilObjectID || asset.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("creator ID and object key are required")
	}

	asset.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, asset)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves an asset by its ObjectID.
func (r *mongoAssetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Asset, error) {
	var asset domain.Asset
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&asset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// ListVisible returns assets the viewer may see: public ones plus their own;
// admins see everything. The visibility rule lives in the query so private
// assets never leave the database for the wrong viewer.
func (r *mongoAssetRepository) ListVisible(ctx context.Context, viewerID primitive.ObjectID, role domain.Role) ([]domain.Asset, error) {
	filter := bson.M{}
	if role != domain.RoleAdmin {
		filter = bson.M{"$or": []bson.M{
			{"isPublic": true},
			{"creatorId": viewerID},
		}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assets []domain.Asset
	if err = cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// Update replaces an asset document.
func (r *mongoAssetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	if asset.ID == primitive.NilObjectID {
		return errors.New("asset ID is required for update")
	}
	asset.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": asset.ID}, asset)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an asset document.
func (r *mongoAssetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAssetIndexes creates necessary indexes for the assets collection.
func EnsureAssetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "creatorId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "isPublic", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
