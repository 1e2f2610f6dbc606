package service

import (
	"context"
	"errors"
	"strings"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/platform/logger"
	"peakform/coaching-app/internal/repository"

	"github.com/google/uuid"
)

// --- Service Interface ---
type DisciplineService interface {
	Create(ctx context.Context, d domain.Discipline) (*domain.Discipline, error)
	Update(ctx context.Context, code string, d domain.Discipline) (*domain.Discipline, error)
	Get(ctx context.Context, code string) (*domain.Discipline, error)
	List(ctx context.Context) ([]domain.Discipline, error)
}

// --- Service Implementation ---

type disciplineService struct {
	disciplineRepo repository.DisciplineRepository
	log            *logger.Logger
}

// NewDisciplineService creates a new instance of disciplineService.
func NewDisciplineService(disciplineRepo repository.DisciplineRepository, log *logger.Logger) DisciplineService {
	return &disciplineService{
		disciplineRepo: disciplineRepo,
		log:            log.With("service", "discipline"),
	}
}

// Create registers a new sport/modality. Codes are normalized to lower case
// so "CrossFit" and "crossfit" name the same discipline.
func (s *disciplineService) Create(ctx context.Context, d domain.Discipline) (*domain.Discipline, error) {
	d.Code = strings.ToLower(strings.TrimSpace(d.Code))
	if err := validateDiscipline(&d); err != nil {
		return nil, err
	}

	id, err := s.disciplineRepo.Create(ctx, &d)
	if err != nil {
		s.log.Error("failed to create discipline", "code", d.Code, "error", err)
		return nil, err
	}
	d.ID = id
	s.log.Info("discipline created", "code", d.Code, "diagnostics", len(d.DefaultDiagnostics))
	return &d, nil
}

// Update replaces the name, price and default diagnostic set of an existing
// discipline. Requests already created keep their cloned diagnostics.
func (s *disciplineService) Update(ctx context.Context, code string, d domain.Discipline) (*domain.Discipline, error) {
	existing, err := s.disciplineRepo.GetByCode(ctx, strings.ToLower(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDisciplineNotFound
		}
		return nil, err
	}

	d.ID = existing.ID
	d.Code = existing.Code
	d.CreatedAt = existing.CreatedAt
	if err := validateDiscipline(&d); err != nil {
		return nil, err
	}

	if err := s.disciplineRepo.Update(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *disciplineService) Get(ctx context.Context, code string) (*domain.Discipline, error) {
	d, err := s.disciplineRepo.GetByCode(ctx, strings.ToLower(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDisciplineNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *disciplineService) List(ctx context.Context) ([]domain.Discipline, error) {
	return s.disciplineRepo.List(ctx)
}

// validateDiscipline checks the record and stamps ids onto diagnostic tests
// missing one, so every test is addressable by submissions.
func validateDiscipline(d *domain.Discipline) error {
	if d.Code == "" || d.Name == "" {
		return errors.New("discipline code and name are required")
	}
	if d.BasePrice < 0 {
		return errors.New("base price cannot be negative")
	}
	for i := range d.DefaultDiagnostics {
		t := &d.DefaultDiagnostics[i]
		if t.Title == "" {
			return errors.New("diagnostic test title is required")
		}
		switch t.InputType {
		case domain.InputText, domain.InputImage, domain.InputVideo:
		default:
			return errors.New("diagnostic test input type must be TEXT, IMAGE or VIDEO")
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
	}
	return nil
}
