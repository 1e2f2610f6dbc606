package api

import (
	"errors"
	"net/http"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/lifecycle"
	"peakform/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestHandler holds the request service dependency.
type RequestHandler struct {
	requestService service.RequestService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// --- DTOs ---

// IntakeRequest carries the athlete's intake form. Vitals are numeric at the
// boundary; free-text numbers are rejected by binding.
type IntakeRequest struct {
	Sport         string  `json:"sport" binding:"required"`
	Goal          string  `json:"goal" binding:"required"`
	HeightCm      float64 `json:"heightCm" binding:"required,gt=0"`
	WeightKg      float64 `json:"weightKg" binding:"required,gt=0"`
	Age           int     `json:"age" binding:"required,gt=0,lt=120"`
	DurationWeeks int     `json:"durationWeeks" binding:"omitempty,gt=0"`
}

type ConfirmPaymentRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

type SubmissionEntry struct {
	TestID string `json:"testId" binding:"required"`
	Data   string `json:"data"`
}

type SubmitDiagnosticsRequest struct {
	Answers []SubmissionEntry `json:"answers" binding:"required"`
}

type AssignCoachRequest struct {
	CoachID string `json:"coachId" binding:"required"`
}

// Intake handles POST /requests.
func (h *RequestHandler) Intake(c *gin.Context) {
	athleteID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.requestService.Intake(c.Request.Context(), athleteID, service.IntakeInput{
		Sport: req.Sport,
		Goal:  req.Goal,
		Biometrics: domain.Biometrics{
			HeightCm: req.HeightCm,
			WeightKg: req.WeightKg,
			Age:      req.Age,
		},
		DurationWeeks: req.DurationWeeks,
	})
	if err != nil {
		if errors.Is(err, service.ErrDisciplineNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ConfirmPayment handles POST /requests/:id/payment.
func (h *RequestHandler) ConfirmPayment(c *gin.Context) {
	athleteID, requestID, ok := h.athleteAndRequestID(c)
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.requestService.ConfirmPayment(c.Request.Context(), athleteID, requestID, req.PaymentMethod)
	if err != nil {
		var declined *service.PaymentDeclinedError
		if errors.As(err, &declined) {
			abortWithError(c, http.StatusPaymentRequired, declined.Error())
			return
		}
		h.writeRequestError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// ListDiagnostics handles GET /requests/:id/diagnostics.
func (h *RequestHandler) ListDiagnostics(c *gin.Context) {
	athleteID, requestID, ok := h.athleteAndRequestID(c)
	if !ok {
		return
	}

	tests, err := h.requestService.ListDiagnostics(c.Request.Context(), athleteID, requestID)
	if err != nil {
		h.writeRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, tests)
}

// SubmitDiagnostics handles POST /requests/:id/submissions.
func (h *RequestHandler) SubmitDiagnostics(c *gin.Context) {
	athleteID, requestID, ok := h.athleteAndRequestID(c)
	if !ok {
		return
	}

	var req SubmitDiagnosticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	answers := make([]service.SubmissionInput, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, service.SubmissionInput{TestID: a.TestID, Data: a.Data})
	}

	updated, err := h.requestService.SubmitDiagnostics(c.Request.Context(), athleteID, requestID, answers)
	if err != nil {
		if errors.Is(err, service.ErrDiagnosticsIncomplete) || errors.Is(err, service.ErrUnknownDiagnosticTest) {
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.writeRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Get handles GET /requests/:id.
func (h *RequestHandler) Get(c *gin.Context) {
	athleteID, requestID, ok := h.athleteAndRequestID(c)
	if !ok {
		return
	}

	req, err := h.requestService.GetForAthlete(c.Request.Context(), athleteID, requestID)
	if err != nil {
		h.writeRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// List handles GET /requests.
func (h *RequestHandler) List(c *gin.Context) {
	athleteID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	requests, err := h.requestService.ListForAthlete(c.Request.Context(), athleteID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not list requests")
		return
	}
	c.JSON(http.StatusOK, requests)
}

// Notifications handles GET /notifications: read-and-clear of the user's
// pending events for the messaging view.
func (h *RequestHandler) Notifications(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	events, err := h.requestService.DrainNotifications(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not fetch notifications")
		return
	}
	c.JSON(http.StatusOK, events)
}

// AssignCoach handles POST /admin/requests/:id/coaches.
func (h *RequestHandler) AssignCoach(c *gin.Context) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request id")
		return
	}

	var req AssignCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	coachID, err := primitive.ObjectIDFromHex(req.CoachID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid coach id")
		return
	}

	updated, err := h.requestService.AssignCoach(c.Request.Context(), requestID, coachID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound), errors.Is(err, service.ErrCoachNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCoachNotRole), errors.Is(err, service.ErrCoachAlreadyAssigned):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "could not assign coach")
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Cancel handles POST /admin/requests/:id/cancel.
func (h *RequestHandler) Cancel(c *gin.Context) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request id")
		return
	}

	updated, err := h.requestService.Cancel(c.Request.Context(), requestID)
	if err != nil {
		h.writeRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// --- helpers ---

func (h *RequestHandler) athleteAndRequestID(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	athleteID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return athleteID, requestID, true
}

// writeRequestError maps shared request-service errors to HTTP statuses.
func (h *RequestHandler) writeRequestError(c *gin.Context, err error) {
	var invalid *lifecycle.InvalidTransitionError
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRequestAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.As(err, &invalid):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "request operation failed")
	}
}
