package api

import (
	"errors"
	"net/http"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// DisciplineHandler holds the discipline service dependency.
type DisciplineHandler struct {
	disciplineService service.DisciplineService
}

// NewDisciplineHandler creates a new DisciplineHandler.
func NewDisciplineHandler(disciplineService service.DisciplineService) *DisciplineHandler {
	return &DisciplineHandler{disciplineService: disciplineService}
}

// --- DTOs ---

type DiagnosticTestPayload struct {
	Title       string `json:"title" binding:"required"`
	Instruction string `json:"instruction"`
	InputType   string `json:"inputType" binding:"required,oneof=TEXT IMAGE VIDEO"`
	Required    bool   `json:"required"`
}

type DisciplinePayload struct {
	Code               string                  `json:"code" binding:"required"`
	Name               string                  `json:"name" binding:"required"`
	BasePrice          float64                 `json:"basePrice" binding:"gte=0"`
	DefaultDiagnostics []DiagnosticTestPayload `json:"defaultDiagnostics"`
}

func (p *DisciplinePayload) toDomain() domain.Discipline {
	tests := make([]domain.DiagnosticTest, 0, len(p.DefaultDiagnostics))
	for _, t := range p.DefaultDiagnostics {
		tests = append(tests, domain.DiagnosticTest{
			Title:       t.Title,
			Instruction: t.Instruction,
			InputType:   domain.DiagnosticInputType(t.InputType),
			Required:    t.Required,
		})
	}
	return domain.Discipline{
		Code:               p.Code,
		Name:               p.Name,
		BasePrice:          p.BasePrice,
		DefaultDiagnostics: tests,
	}
}

// List handles GET /disciplines. Any authenticated user can browse the
// catalog when filling out the intake form.
func (h *DisciplineHandler) List(c *gin.Context) {
	disciplines, err := h.disciplineService.List(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list disciplines")
		return
	}
	c.JSON(http.StatusOK, disciplines)
}

// Create handles POST /admin/disciplines.
func (h *DisciplineHandler) Create(c *gin.Context) {
	var req DisciplinePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.disciplineService.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /admin/disciplines/:code.
func (h *DisciplineHandler) Update(c *gin.Context) {
	code := c.Param("code")

	var req DisciplinePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.disciplineService.Update(c.Request.Context(), code, req.toDomain())
	if err != nil {
		if errors.Is(err, service.ErrDisciplineNotFound) {
			abortWithError(c, http.StatusNotFound, "Discipline not found")
			return
		}
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, updated)
}
