package api

import (
	"errors"
	"net/http"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/lifecycle"
	"peakform/coaching-app/internal/repository"
	"peakform/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuilderHandler holds the builder and request service dependencies for the
// coach-facing surface.
type BuilderHandler struct {
	builderService service.BuilderService
	requestService service.RequestService
}

// NewBuilderHandler creates a new BuilderHandler.
func NewBuilderHandler(builderService service.BuilderService, requestService service.RequestService) *BuilderHandler {
	return &BuilderHandler{builderService: builderService, requestService: requestService}
}

// --- DTOs ---

type SetWeeksRequest struct {
	Weeks   []domain.WeekProgram `json:"weeks" binding:"required"`
	Version int64                `json:"version" binding:"required"`
}

type SetMealPlanRequest struct {
	MealPlan *domain.MealPlan `json:"mealPlan"`
	Version  int64            `json:"version" binding:"required"`
}

type PublishRequest struct {
	Version int64 `json:"version" binding:"required"`
}

type ApplyWorkoutTemplateRequest struct {
	WeekIndex int `json:"weekIndex"`
	DayIndex  int `json:"dayIndex"`
}

type ConfigureDiagnosticsRequest struct {
	Tests []domain.DiagnosticTest `json:"tests" binding:"required"`
}

type CreateWorkoutTemplateRequest struct {
	Name      string            `json:"name" binding:"required"`
	Exercises []domain.Exercise `json:"exercises"`
}

type CreateMealTemplateRequest struct {
	Name  string        `json:"name" binding:"required"`
	Meals []domain.Meal `json:"meals"`
}

// ListAssigned handles GET /coach/requests.
func (h *BuilderHandler) ListAssigned(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	requests, err := h.requestService.ListForCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not list requests")
		return
	}
	c.JSON(http.StatusOK, requests)
}

// Open handles GET /coach/requests/:id: the builder view with the athlete's
// submissions read-only.
func (h *BuilderHandler) Open(c *gin.Context) {
	coachID, requestID, ok := h.coachAndRequestID(c)
	if !ok {
		return
	}

	view, err := h.builderService.Open(c.Request.Context(), coachID, requestID)
	if err != nil {
		h.writeBuilderError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ConfigureDiagnostics handles PUT /coach/requests/:id/diagnostics.
func (h *BuilderHandler) ConfigureDiagnostics(c *gin.Context) {
	coachID, requestID, ok := h.coachAndRequestID(c)
	if !ok {
		return
	}

	var req ConfigureDiagnosticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.requestService.ConfigureDiagnostics(c.Request.Context(), coachID, requestID, req.Tests)
	if err != nil {
		h.writeBuilderError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SetWeeks handles PUT /coach/requests/:id/weeks.
func (h *BuilderHandler) SetWeeks(c *gin.Context) {
	coachID, requestID, ok := h.coachAndRequestID(c)
	if !ok {
		return
	}

	var req SetWeeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.builderService.SetWeeks(c.Request.Context(), coachID, requestID, req.Weeks, req.Version)
	if err != nil {
		h.writeBuilderError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SetMealPlan handles PUT /coach/requests/:id/mealplan.
func (h *BuilderHandler) SetMealPlan(c *gin.Context) {
	coachID, requestID, ok := h.coachAndRequestID(c)
	if !ok {
		return
	}

	var req SetMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.builderService.SetMealPlan(c.Request.Context(), coachID, requestID, req.MealPlan, req.Version)
	if err != nil {
		h.writeBuilderError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Publish handles POST /coach/requests/:id/publish.
func (h *BuilderHandler) Publish(c *gin.Context) {
	coachID, requestID, ok := h.coachAndRequestID(c)
	if !ok {
		return
	}

	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.builderService.Publish(c.Request.Context(), coachID, requestID, req.Version)
	if err != nil {
		if errors.Is(err, service.ErrEmptyProgram) {
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.writeBuilderError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ApplyWorkoutTemplate handles POST /coach/requests/:id/templates/:templateId/apply.
func (h *BuilderHandler) ApplyWorkoutTemplate(c *gin.Context) {
	coachID, requestID, ok := h.coachAndRequestID(c)
	if !ok {
		return
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid template id")
		return
	}

	var req ApplyWorkoutTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.builderService.ApplyWorkoutTemplate(c.Request.Context(), coachID, requestID, templateID, req.WeekIndex, req.DayIndex)
	if err != nil {
		if errors.Is(err, service.ErrDayNotFound) {
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.writeBuilderError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ApplyMealTemplate handles POST /coach/requests/:id/meal-templates/:templateId/apply.
func (h *BuilderHandler) ApplyMealTemplate(c *gin.Context) {
	coachID, requestID, ok := h.coachAndRequestID(c)
	if !ok {
		return
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid template id")
		return
	}

	updated, err := h.builderService.ApplyMealTemplate(c.Request.Context(), coachID, requestID, templateID)
	if err != nil {
		h.writeBuilderError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CreateWorkoutTemplate handles POST /coach/templates.
func (h *BuilderHandler) CreateWorkoutTemplate(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateWorkoutTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	tpl, err := h.builderService.CreateWorkoutTemplate(c.Request.Context(), coachID, req.Name, req.Exercises)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

// ListWorkoutTemplates handles GET /coach/templates.
func (h *BuilderHandler) ListWorkoutTemplates(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	templates, err := h.builderService.ListWorkoutTemplates(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not list templates")
		return
	}
	c.JSON(http.StatusOK, templates)
}

// CreateMealTemplate handles POST /coach/meal-templates.
func (h *BuilderHandler) CreateMealTemplate(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateMealTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	tpl, err := h.builderService.CreateMealTemplate(c.Request.Context(), coachID, req.Name, req.Meals)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

// ListMealTemplates handles GET /coach/meal-templates.
func (h *BuilderHandler) ListMealTemplates(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	templates, err := h.builderService.ListMealTemplates(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not list templates")
		return
	}
	c.JSON(http.StatusOK, templates)
}

// --- helpers ---

func (h *BuilderHandler) coachAndRequestID(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return coachID, requestID, true
}

// writeBuilderError maps builder/request errors to HTTP statuses.
func (h *BuilderHandler) writeBuilderError(c *gin.Context, err error) {
	var invalid *lifecycle.InvalidTransitionError
	switch {
	case errors.Is(err, service.ErrRequestNotFound), errors.Is(err, service.ErrTemplateNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRequestAccessDenied), errors.Is(err, service.ErrTemplateAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotBuilding), errors.Is(err, repository.ErrVersionConflict), errors.As(err, &invalid):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "builder operation failed")
	}
}
