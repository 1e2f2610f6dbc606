package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetKind distinguishes the media types held in the shared library.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetVideo AssetKind = "video"
)

// Asset is one entry in the shared media library. The file itself lives in
// object storage under S3ObjectKey; this document is the metadata.
type Asset struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorID   primitive.ObjectID `bson:"creatorId" json:"creatorId"`
	Kind        AssetKind          `bson:"kind" json:"kind"`
	Title       string             `bson:"title" json:"title"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	IsPublic    bool               `bson:"isPublic" json:"isPublic"`
	Generated   bool               `bson:"generated" json:"generated"` // Produced by the generative content service
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// VisibleTo is the single access-control rule in the system: public assets
// are visible to everyone, private ones only to their creator and admins.
// Every listing and selection surface must apply it.
func (a *Asset) VisibleTo(userID primitive.ObjectID, role Role) bool {
	if a.IsPublic {
		return true
	}
	return a.CreatorID == userID || role == RoleAdmin
}

// MutableBy reports whether the user may update or delete the asset.
func (a *Asset) MutableBy(userID primitive.ObjectID, role Role) bool {
	return a.CreatorID == userID || role == RoleAdmin
}
