package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/novy-stil/service-atelier/internal/application"
	"github.com/novy-stil/service-atelier/pkg/response"
)

// ProfileManager is the profile API used by ProfileHandler.
type ProfileManager interface {
	GetProfile(ctx context.Context, userID int64) (*application.ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID int64, req application.UpdateProfileRequest) (*application.ProfileDTO, error)
	UploadPhoto(ctx context.Context, userID int64, filename string, content io.Reader) (*application.PhotoDTO, error)
}

// ProfileHandler handles HTTP requests for the caller's profile.
type ProfileHandler struct {
	service ProfileManager
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service ProfileManager) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// RegisterRoutes registers profile routes.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	profile := r.Group("/profile")
	profile.Use(authMW)
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.POST("/photo", h.UploadPhoto)
	}
}

// GetProfile handles GET /profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateProfile handles PUT /profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req application.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UploadPhoto handles POST /profile/photo (multipart field "image").
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required")
		return
	}
	file, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "cannot read uploaded image")
		return
	}
	defer file.Close()

	result, err := h.service.UploadPhoto(c.Request.Context(), userID, fh.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
