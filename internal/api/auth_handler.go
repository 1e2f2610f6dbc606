package api

import (
	"errors"
	"net/http"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/mfa"
	"peakform/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- DTOs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required,oneof=athlete coach"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"deviceId"`
}

type VerifyMFARequest struct {
	ChallengeID string `json:"challengeId" binding:"required"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	DeviceID    string `json:"deviceId"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	Token       string        `json:"token,omitempty"`
	MFARequired bool          `json:"mfaRequired"`
	ChallengeID string        `json:"challengeId,omitempty"`
	User        *UserResponse `json:"user,omitempty"`
}

func toUserResponse(u *domain.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Phone, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login handles POST /auth/login. Trusted devices get a token; others get a
// pending MFA challenge.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, req.DeviceID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "login failed")
		return
	}

	resp := LoginResponse{
		Token:       result.Token,
		MFARequired: result.MFARequired,
		ChallengeID: result.ChallengeID,
	}
	if !result.MFARequired {
		resp.User = toUserResponse(result.User)
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyMFA handles POST /auth/mfa/verify.
func (h *AuthHandler) VerifyMFA(c *gin.Context) {
	var req VerifyMFARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.VerifyMFA(c.Request.Context(), req.ChallengeID, req.Code, req.DeviceID)
	if err != nil {
		if errors.Is(err, mfa.ErrCodeMismatch) || errors.Is(err, mfa.ErrChallengeNotFound) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "verification failed")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: result.Token, User: toUserResponse(result.User)})
}
