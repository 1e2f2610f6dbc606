package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/genai"
	"peakform/coaching-app/internal/platform/logger"
	"peakform/coaching-app/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type assetFixture struct {
	assets  *fakeAssetRepo
	files   *fakeFileStorage
	gen     *fakeGenerator
	svc     service.AssetService
	coachID primitive.ObjectID
	otherID primitive.ObjectID
}

func newAssetFixture(t *testing.T) *assetFixture {
	t.Helper()
	f := &assetFixture{
		assets:  newFakeAssetRepo(),
		files:   newFakeFileStorage(),
		gen:     &fakeGenerator{},
		coachID: primitive.NewObjectID(),
		otherID: primitive.NewObjectID(),
	}
	f.svc = service.NewAssetService(f.assets, f.files, f.gen, logger.NewNop())
	return f
}

func (f *assetFixture) seed(t *testing.T, creator primitive.ObjectID, title string, public bool) primitive.ObjectID {
	t.Helper()
	id, err := f.assets.Create(context.Background(), &domain.Asset{
		CreatorID:   creator,
		Kind:        domain.AssetVideo,
		Title:       title,
		S3ObjectKey: "assets/" + title,
		ContentType: "video/mp4",
		IsPublic:    public,
	})
	if err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	return id
}

func TestListAppliesVisibilityRule(t *testing.T) {
	f := newAssetFixture(t)
	ctx := context.Background()

	f.seed(t, f.coachID, "mine-private", false)
	f.seed(t, f.coachID, "mine-public", true)
	f.seed(t, f.otherID, "theirs-private", false)
	f.seed(t, f.otherID, "theirs-public", true)

	got, err := f.svc.List(ctx, f.coachID, domain.RoleCoach)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	titles := make(map[string]bool, len(got))
	for _, a := range got {
		titles[a.Title] = true
	}
	if len(got) != 3 || !titles["mine-private"] || !titles["mine-public"] || !titles["theirs-public"] {
		t.Errorf("coach sees %v, want own assets plus public ones", titles)
	}

	admin, err := f.svc.List(ctx, primitive.NewObjectID(), domain.RoleAdmin)
	if err != nil {
		t.Fatalf("List(admin) error = %v", err)
	}
	if len(admin) != 4 {
		t.Errorf("admin sees %d assets, want all 4", len(admin))
	}
}

func TestDownloadURLDeniedForPrivateAsset(t *testing.T) {
	f := newAssetFixture(t)
	ctx := context.Background()
	id := f.seed(t, f.coachID, "demo", false)

	if _, err := f.svc.DownloadURL(ctx, f.otherID, domain.RoleCoach, id); !errors.Is(err, service.ErrAssetAccessDenied) {
		t.Errorf("stranger download error = %v, want ErrAssetAccessDenied", err)
	}
	url, err := f.svc.DownloadURL(ctx, f.coachID, domain.RoleCoach, id)
	if err != nil {
		t.Fatalf("owner download error = %v", err)
	}
	if !strings.Contains(url, "assets/demo") {
		t.Errorf("url = %q, want presigned link for the object key", url)
	}
}

func TestBeginUploadReturnsPresignedURL(t *testing.T) {
	f := newAssetFixture(t)

	up, err := f.svc.BeginUpload(context.Background(), f.coachID, domain.AssetVideo, "Squat Demo", "squat.mp4", "video/mp4", 1024, true)
	if err != nil {
		t.Fatalf("BeginUpload() error = %v", err)
	}
	if up.Asset.ID.IsZero() {
		t.Error("asset metadata not persisted")
	}
	if !strings.Contains(up.UploadURL, up.Asset.S3ObjectKey) {
		t.Errorf("upload url %q does not reference object key %q", up.UploadURL, up.Asset.S3ObjectKey)
	}
	if !strings.Contains(up.Asset.S3ObjectKey, "squat.mp4") {
		t.Errorf("object key %q does not carry the file name", up.Asset.S3ObjectKey)
	}
}

func TestSetVisibilityOwnerOnly(t *testing.T) {
	f := newAssetFixture(t)
	ctx := context.Background()
	id := f.seed(t, f.coachID, "demo", false)

	if _, err := f.svc.SetVisibility(ctx, f.otherID, domain.RoleCoach, id, true); !errors.Is(err, service.ErrAssetAccessDenied) {
		t.Errorf("stranger toggle error = %v, want ErrAssetAccessDenied", err)
	}

	updated, err := f.svc.SetVisibility(ctx, f.coachID, domain.RoleCoach, id, true)
	if err != nil {
		t.Fatalf("owner toggle error = %v", err)
	}
	if !updated.IsPublic {
		t.Error("asset still private after toggle")
	}

	// Admin may toggle anyone's asset.
	if _, err := f.svc.SetVisibility(ctx, primitive.NewObjectID(), domain.RoleAdmin, id, false); err != nil {
		t.Errorf("admin toggle error = %v", err)
	}
}

func TestDeleteRemovesStoredObject(t *testing.T) {
	f := newAssetFixture(t)
	ctx := context.Background()
	id := f.seed(t, f.coachID, "demo", false)

	if err := f.svc.Delete(ctx, f.coachID, domain.RoleCoach, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.svc.DownloadURL(ctx, f.coachID, domain.RoleCoach, id); !errors.Is(err, service.ErrAssetNotFound) {
		t.Errorf("download after delete error = %v, want ErrAssetNotFound", err)
	}
	if len(f.files.deleted) != 1 || f.files.deleted[0] != "assets/demo" {
		t.Errorf("stored object not cleaned up: %v", f.files.deleted)
	}
}

func TestGenerateStoresResult(t *testing.T) {
	f := newAssetFixture(t)
	ctx := context.Background()

	asset, err := f.svc.Generate(ctx, f.coachID, "kettlebell swing illustration", nil, false)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !asset.Generated {
		t.Error("asset not flagged as generated")
	}
	if asset.ContentType != "image/png" || asset.Size != int64(len("png-bytes")) {
		t.Errorf("asset metadata = %s/%d", asset.ContentType, asset.Size)
	}
	if _, ok := f.files.uploaded[asset.S3ObjectKey]; !ok {
		t.Errorf("generated bytes not uploaded under %q", asset.S3ObjectKey)
	}
}

func TestGenerateTruncatesTitleOnRuneBoundary(t *testing.T) {
	f := newAssetFixture(t)

	prompt := strings.Repeat("ü", 80)
	asset, err := f.svc.Generate(context.Background(), f.coachID, prompt, nil, false)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !utf8.ValidString(asset.Title) {
		t.Errorf("title is not valid UTF-8: %q", asset.Title)
	}
	if got := utf8.RuneCountInString(asset.Title); got != 60 {
		t.Errorf("title runes = %d, want 60", got)
	}
}

func TestGenerateFailurePropagates(t *testing.T) {
	f := newAssetFixture(t)
	f.gen.err = genai.ErrGenerationFailed

	_, err := f.svc.Generate(context.Background(), f.coachID, "anything", nil, false)
	if !errors.Is(err, genai.ErrGenerationFailed) {
		t.Fatalf("Generate() error = %v, want ErrGenerationFailed", err)
	}
	if got, _ := f.svc.List(context.Background(), f.coachID, domain.RoleCoach); len(got) != 0 {
		t.Errorf("asset recorded despite generation failure: %d", len(got))
	}
}
