package api

import (
	"encoding/base64"
	"errors"
	"net/http"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/genai"
	"peakform/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetHandler holds the asset service dependency.
type AssetHandler struct {
	assetService service.AssetService
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(assetService service.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

// --- DTOs ---

type BeginUploadRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=image video"`
	Title       string `json:"title" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
	IsPublic    bool   `json:"isPublic"`
}

type SetVisibilityRequest struct {
	IsPublic bool `json:"isPublic"`
}

type GenerateAssetRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	SourceImage string `json:"sourceImage"` // optional, base64
	IsPublic    bool   `json:"isPublic"`
}

// List handles GET /assets.
func (h *AssetHandler) List(c *gin.Context) {
	viewerID, role, ok := h.viewer(c)
	if !ok {
		return
	}

	assets, err := h.assetService.List(c.Request.Context(), viewerID, role)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "could not list assets")
		return
	}
	c.JSON(http.StatusOK, assets)
}

// BeginUpload handles POST /assets.
func (h *AssetHandler) BeginUpload(c *gin.Context) {
	viewerID, _, ok := h.viewer(c)
	if !ok {
		return
	}

	var req BeginUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	upload, err := h.assetService.BeginUpload(c.Request.Context(), viewerID, domain.AssetKind(req.Kind), req.Title, req.FileName, req.ContentType, req.Size, req.IsPublic)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset": upload.Asset, "uploadUrl": upload.UploadURL})
}

// DownloadURL handles GET /assets/:id/url.
func (h *AssetHandler) DownloadURL(c *gin.Context) {
	viewerID, role, ok := h.viewer(c)
	if !ok {
		return
	}
	assetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid asset id")
		return
	}

	url, err := h.assetService.DownloadURL(c.Request.Context(), viewerID, role, assetID)
	if err != nil {
		h.writeAssetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// SetVisibility handles PATCH /assets/:id.
func (h *AssetHandler) SetVisibility(c *gin.Context) {
	viewerID, role, ok := h.viewer(c)
	if !ok {
		return
	}
	assetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req SetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	asset, err := h.assetService.SetVisibility(c.Request.Context(), viewerID, role, assetID, req.IsPublic)
	if err != nil {
		h.writeAssetError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// Delete handles DELETE /assets/:id.
func (h *AssetHandler) Delete(c *gin.Context) {
	viewerID, role, ok := h.viewer(c)
	if !ok {
		return
	}
	assetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid asset id")
		return
	}

	if err := h.assetService.Delete(c.Request.Context(), viewerID, role, assetID); err != nil {
		h.writeAssetError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Generate handles POST /assets/generate. Collaborator failures surface as a
// 502 with a message, never a crash.
func (h *AssetHandler) Generate(c *gin.Context) {
	viewerID, _, ok := h.viewer(c)
	if !ok {
		return
	}

	var req GenerateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var source []byte
	if req.SourceImage != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.SourceImage)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "sourceImage must be base64")
			return
		}
		source = decoded
	}

	asset, err := h.assetService.Generate(c.Request.Context(), viewerID, req.Prompt, source, req.IsPublic)
	if err != nil {
		if errors.Is(err, genai.ErrGenerationFailed) {
			abortWithError(c, http.StatusBadGateway, err.Error())
			return
		}
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, asset)
}

// --- helpers ---

func (h *AssetHandler) viewer(c *gin.Context) (primitive.ObjectID, domain.Role, bool) {
	viewerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return primitive.NilObjectID, "", false
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user role from token")
		return primitive.NilObjectID, "", false
	}
	return viewerID, role, true
}

func (h *AssetHandler) writeAssetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssetNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAssetAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "asset operation failed")
	}
}
