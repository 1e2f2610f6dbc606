package service

import (
	"context"
	"errors"
	"fmt"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/genai"
	"peakform/coaching-app/internal/platform/logger"
	"peakform/coaching-app/internal/repository"
	"peakform/coaching-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAssetNotFound     = errors.New("asset not found")
	ErrAssetAccessDenied = errors.New("access denied to this asset")
)

// AssetUpload is a pending direct-to-storage upload: the client PUTs the
// file to UploadURL, then confirms with the returned asset id.
type AssetUpload struct {
	Asset     *domain.Asset
	UploadURL string
}

// --- Service Interface ---
type AssetService interface {
	List(ctx context.Context, viewerID primitive.ObjectID, role domain.Role) ([]domain.Asset, error)
	BeginUpload(ctx context.Context, creatorID primitive.ObjectID, kind domain.AssetKind, title, fileName, contentType string, size int64, isPublic bool) (*AssetUpload, error)
	DownloadURL(ctx context.Context, viewerID primitive.ObjectID, role domain.Role, assetID primitive.ObjectID) (string, error)
	SetVisibility(ctx context.Context, userID primitive.ObjectID, role domain.Role, assetID primitive.ObjectID, isPublic bool) (*domain.Asset, error)
	Delete(ctx context.Context, userID primitive.ObjectID, role domain.Role, assetID primitive.ObjectID) error
	Generate(ctx context.Context, creatorID primitive.ObjectID, prompt string, sourceImage []byte, isPublic bool) (*domain.Asset, error)
}

// --- Service Implementation ---

type assetService struct {
	assetRepo repository.AssetRepository
	files     storage.FileStorage
	generator genai.Generator
	log       *logger.Logger
}

// NewAssetService creates a new instance of assetService.
func NewAssetService(
	assetRepo repository.AssetRepository,
	files storage.FileStorage,
	generator genai.Generator,
	log *logger.Logger,
) AssetService {
	return &assetService{
		assetRepo: assetRepo,
		files:     files,
		generator: generator,
		log:       log.With("service", "asset"),
	}
}

// List returns every asset the viewer may see under the visibility rule.
func (s *assetService) List(ctx context.Context, viewerID primitive.ObjectID, role domain.Role) ([]domain.Asset, error) {
	return s.assetRepo.ListVisible(ctx, viewerID, role)
}

// BeginUpload registers asset metadata and hands back a presigned PUT URL.
func (s *assetService) BeginUpload(ctx context.Context, creatorID primitive.ObjectID, kind domain.AssetKind, title, fileName, contentType string, size int64, isPublic bool) (*AssetUpload, error) {
	if title == "" || fileName == "" || contentType == "" {
		return nil, errors.New("title, file name and content type are required")
	}
	if kind != domain.AssetImage && kind != domain.AssetVideo {
		return nil, errors.New("asset kind must be image or video")
	}

	objectKey := fmt.Sprintf("assets/%s/%s-%s", creatorID.Hex(), uuid.NewString(), fileName)
	asset := &domain.Asset{
		CreatorID:   creatorID,
		Kind:        kind,
		Title:       title,
		S3ObjectKey: objectKey,
		ContentType: contentType,
		Size:        size,
		IsPublic:    isPublic,
	}
	id, err := s.assetRepo.Create(ctx, asset)
	if err != nil {
		return nil, err
	}
	asset.ID = id

	url, err := s.files.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		// Roll back the metadata so no orphan record points at a file that
		// will never arrive.
		if delErr := s.assetRepo.Delete(ctx, id); delErr != nil {
			s.log.Error("could not roll back asset metadata", "asset", id.Hex(), "err", delErr)
		}
		return nil, err
	}

	return &AssetUpload{Asset: asset, UploadURL: url}, nil
}

// DownloadURL returns a presigned GET URL, applying the visibility rule.
func (s *assetService) DownloadURL(ctx context.Context, viewerID primitive.ObjectID, role domain.Role, assetID primitive.ObjectID) (string, error) {
	asset, err := s.get(ctx, assetID)
	if err != nil {
		return "", err
	}
	if !asset.VisibleTo(viewerID, role) {
		return "", ErrAssetAccessDenied
	}
	return s.files.GeneratePresignedDownloadURL(ctx, asset.S3ObjectKey, storage.DefaultPresignedURLExpiry)
}

// SetVisibility toggles an asset between public and private. Owner or admin
// only.
func (s *assetService) SetVisibility(ctx context.Context, userID primitive.ObjectID, role domain.Role, assetID primitive.ObjectID, isPublic bool) (*domain.Asset, error) {
	asset, err := s.get(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !asset.MutableBy(userID, role) {
		return nil, ErrAssetAccessDenied
	}

	asset.IsPublic = isPublic
	if err := s.assetRepo.Update(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// Delete removes the asset and its stored object. Owner or admin only.
func (s *assetService) Delete(ctx context.Context, userID primitive.ObjectID, role domain.Role, assetID primitive.ObjectID) error {
	asset, err := s.get(ctx, assetID)
	if err != nil {
		return err
	}
	if !asset.MutableBy(userID, role) {
		return ErrAssetAccessDenied
	}

	if err := s.assetRepo.Delete(ctx, assetID); err != nil {
		return err
	}
	if err := s.files.DeleteObject(ctx, asset.S3ObjectKey); err != nil {
		// Metadata is gone; an orphaned object is a storage hygiene issue,
		// not a user-facing failure.
		s.log.Warn("could not delete stored object", "key", asset.S3ObjectKey, "err", err)
	}
	return nil
}

// Generate asks the generative collaborator for an asset and stores the
// result. Collaborator failures come back as genai.ErrGenerationFailed with
// nothing written.
func (s *assetService) Generate(ctx context.Context, creatorID primitive.ObjectID, prompt string, sourceImage []byte, isPublic bool) (*domain.Asset, error) {
	if prompt == "" {
		return nil, errors.New("prompt is required")
	}

	generated, err := s.generator.Generate(ctx, prompt, sourceImage)
	if err != nil {
		s.log.Warn("generation failed", "err", err)
		return nil, err
	}

	objectKey := fmt.Sprintf("assets/%s/generated-%s", creatorID.Hex(), uuid.NewString())
	if err := s.files.UploadObject(ctx, objectKey, generated.ContentType, generated.Data); err != nil {
		return nil, err
	}

	title := prompt
	if runes := []rune(title); len(runes) > 60 {
		title = string(runes[:60])
	}
	asset := &domain.Asset{
		CreatorID:   creatorID,
		Kind:        domain.AssetImage,
		Title:       title,
		S3ObjectKey: objectKey,
		ContentType: generated.ContentType,
		Size:        int64(len(generated.Data)),
		IsPublic:    isPublic,
		Generated:   true,
	}
	id, err := s.assetRepo.Create(ctx, asset)
	if err != nil {
		if delErr := s.files.DeleteObject(ctx, objectKey); delErr != nil {
			s.log.Error("could not clean up generated object", "key", objectKey, "err", delErr)
		}
		return nil, err
	}
	asset.ID = id
	return asset, nil
}

func (s *assetService) get(ctx context.Context, assetID primitive.ObjectID) (*domain.Asset, error) {
	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}
