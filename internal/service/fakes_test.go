package service_test

import (
	"context"
	"sync"
	"time"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/genai"
	"peakform/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes mirroring the Mongo implementations' contracts,
// including the optimistic version check on request updates.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := u
	return &c, nil
}

func (r *fakeUserRepo) GetCoachesByDiscipline(ctx context.Context, code string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if !u.IsCoach() {
			continue
		}
		for _, d := range u.Disciplines {
			if d == code {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]domain.CustomCourseRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[primitive.ObjectID]domain.CustomCourseRequest)}
}

func (r *fakeRequestRepo) Create(ctx context.Context, req *domain.CustomCourseRequest) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	req.Version = 1
	r.requests[req.ID] = *req
	return req.ID, nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CustomCourseRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := req
	return &c, nil
}

func (r *fakeRequestRepo) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.CustomCourseRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CustomCourseRequest
	for _, req := range r.requests {
		if req.AthleteID == athleteID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.CustomCourseRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CustomCourseRequest
	for _, req := range r.requests {
		if req.IsAssignedCoach(coachID) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) GetStalled(ctx context.Context, statuses []domain.RequestStatus, idleSince time.Time) ([]domain.CustomCourseRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CustomCourseRequest
	for _, req := range r.requests {
		if !req.UpdatedAt.Before(idleSince) {
			continue
		}
		for _, s := range statuses {
			if req.Status == s {
				out = append(out, req)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) Update(ctx context.Context, req *domain.CustomCourseRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[req.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != req.Version {
		return repository.ErrVersionConflict
	}
	req.Version++
	req.UpdatedAt = time.Now().UTC()
	r.requests[req.ID] = *req
	return nil
}

// touch backdates a stored request's UpdatedAt, for stall tests.
func (r *fakeRequestRepo) touch(id primitive.ObjectID, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req := r.requests[id]
	req.UpdatedAt = at
	r.requests[id] = req
}

type fakeDisciplineRepo struct {
	mu          sync.Mutex
	disciplines map[string]domain.Discipline
}

func newFakeDisciplineRepo() *fakeDisciplineRepo {
	return &fakeDisciplineRepo{disciplines: make(map[string]domain.Discipline)}
}

func (r *fakeDisciplineRepo) Create(ctx context.Context, d *domain.Discipline) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	r.disciplines[d.Code] = *d
	return d.ID, nil
}

func (r *fakeDisciplineRepo) GetByCode(ctx context.Context, code string) (*domain.Discipline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.disciplines[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := d
	return &c, nil
}

func (r *fakeDisciplineRepo) List(ctx context.Context) ([]domain.Discipline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Discipline
	for _, d := range r.disciplines {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDisciplineRepo) Update(ctx context.Context, d *domain.Discipline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.disciplines[d.Code]; !ok {
		return repository.ErrNotFound
	}
	d.UpdatedAt = time.Now().UTC()
	r.disciplines[d.Code] = *d
	return nil
}

type fakeTemplateRepo struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]domain.WorkoutTemplate
	meals    map[primitive.ObjectID]domain.MealTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{
		workouts: make(map[primitive.ObjectID]domain.WorkoutTemplate),
		meals:    make(map[primitive.ObjectID]domain.MealTemplate),
	}
}

func (r *fakeTemplateRepo) CreateWorkout(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	r.workouts[tpl.ID] = *tpl
	return tpl.ID, nil
}

func (r *fakeTemplateRepo) GetWorkoutByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := tpl
	return &c, nil
}

func (r *fakeTemplateRepo) GetWorkoutsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorkoutTemplate
	for _, tpl := range r.workouts {
		if tpl.CoachID == coachID {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) CreateMeal(ctx context.Context, tpl *domain.MealTemplate) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	r.meals[tpl.ID] = *tpl
	return tpl.ID, nil
}

func (r *fakeTemplateRepo) GetMealByID(ctx context.Context, id primitive.ObjectID) (*domain.MealTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.meals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := tpl
	return &c, nil
}

func (r *fakeTemplateRepo) GetMealsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.MealTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MealTemplate
	for _, tpl := range r.meals {
		if tpl.CoachID == coachID {
			out = append(out, tpl)
		}
	}
	return out, nil
}

type fakeAssetRepo struct {
	mu     sync.Mutex
	assets map[primitive.ObjectID]domain.Asset
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: make(map[primitive.ObjectID]domain.Asset)}
}

func (r *fakeAssetRepo) Create(ctx context.Context, asset *domain.Asset) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	r.assets[asset.ID] = *asset
	return asset.ID, nil
}

func (r *fakeAssetRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := a
	return &c, nil
}

func (r *fakeAssetRepo) ListVisible(ctx context.Context, viewerID primitive.ObjectID, role domain.Role) ([]domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Asset
	for _, a := range r.assets {
		if role == domain.RoleAdmin || a.IsPublic || a.CreatorID == viewerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) Update(ctx context.Context, asset *domain.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[asset.ID]; !ok {
		return repository.ErrNotFound
	}
	asset.UpdatedAt = time.Now().UTC()
	r.assets[asset.ID] = *asset
	return nil
}

func (r *fakeAssetRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.assets, id)
	return nil
}

// fakeFileStorage records operations instead of talking to S3.
type fakeFileStorage struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	deleted  []string
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{uploaded: make(map[string][]byte)}
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (s *fakeFileStorage) UploadObject(ctx context.Context, objectKey, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded[objectKey] = data
	return nil
}

func (s *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectKey)
	return nil
}

// fakeGenerator returns a fixed payload, or err when set.
type fakeGenerator struct {
	err error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, sourceImage []byte) (*genai.GeneratedAsset, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &genai.GeneratedAsset{Data: []byte("png-bytes"), ContentType: "image/png"}, nil
}
