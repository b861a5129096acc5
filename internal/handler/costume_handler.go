package handler

import (
	"context"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/novy-stil/service-atelier/internal/application"
	"github.com/novy-stil/service-atelier/pkg/response"
)

// CatalogService is the costume API used by CostumeHandler.
type CatalogService interface {
	CreateCostume(ctx context.Context, in application.CostumeInput, image application.ImageUpload) (*application.CostumeDTO, error)
	ListCostumes(ctx context.Context) ([]application.CostumeDTO, error)
	GetCostume(ctx context.Context, id int64) (*application.CostumeDTO, error)
	UpdateCostume(ctx context.Context, id int64, in application.CostumeInput, image *application.ImageUpload) (*application.CostumeDTO, error)
	DeleteCostume(ctx context.Context, id int64) error
}

// CostumeHandler handles HTTP requests for the costume catalog.
type CostumeHandler struct {
	service CatalogService
}

// NewCostumeHandler creates a new CostumeHandler.
func NewCostumeHandler(service CatalogService) *CostumeHandler {
	return &CostumeHandler{service: service}
}

// RegisterRoutes registers costume routes. Reads are public, writes need an admin.
func (h *CostumeHandler) RegisterRoutes(r *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	costumes := r.Group("/costumes")
	{
		costumes.GET("", h.ListCostumes)
		costumes.GET("/:id", h.GetCostume)
		costumes.POST("", authMW, adminMW, h.CreateCostume)
		costumes.PUT("/:id", authMW, adminMW, h.UpdateCostume)
		costumes.DELETE("/:id", authMW, adminMW, h.DeleteCostume)
	}
}

// CreateCostume handles POST /costumes (multipart form).
func (h *CostumeHandler) CreateCostume(c *gin.Context) {
	in, ok := bindCostumeForm(c)
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

	result, err := h.service.CreateCostume(c.Request.Context(), in, application.ImageUpload{Filename: fh.Filename, Content: file})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListCostumes handles GET /costumes.
func (h *CostumeHandler) ListCostumes(c *gin.Context) {
	result, err := h.service.ListCostumes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetCostume handles GET /costumes/:id.
func (h *CostumeHandler) GetCostume(c *gin.Context) {
	id, ok := parseID(c, "id", "costume")
	if !ok {
		return
	}

	result, err := h.service.GetCostume(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateCostume handles PUT /costumes/:id. The image part is optional.
func (h *CostumeHandler) UpdateCostume(c *gin.Context) {
	id, ok := parseID(c, "id", "costume")
	if !ok {
		return
	}
	in, ok := bindCostumeForm(c)
	if !ok {
		return
	}

	var image *application.ImageUpload
	if fh, err := c.FormFile("image"); err == nil {
		var file multipart.File
		file, err = fh.Open()
		if err != nil {
			response.BadRequest(c, "cannot read uploaded image")
			return
		}
		defer file.Close()
		image = &application.ImageUpload{Filename: fh.Filename, Content: file}
	}

	result, err := h.service.UpdateCostume(c.Request.Context(), id, in, image)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteCostume handles DELETE /costumes/:id.
func (h *CostumeHandler) DeleteCostume(c *gin.Context) {
	id, ok := parseID(c, "id", "costume")
	if !ok {
		return
	}

	if err := h.service.DeleteCostume(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, deletedResponse{OK: true})
}

// bindCostumeForm reads title, description, price and available from a form.
// available defaults to true.
func bindCostumeForm(c *gin.Context) (application.CostumeInput, bool) {
	in := application.CostumeInput{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Available:   true,
	}
	if in.Title == "" {
		response.BadRequest(c, "title is required")
		return in, false
	}

	price, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("price")), 10, 64)
	if err != nil {
		response.BadRequest(c, "price must be an integer")
		return in, false
	}
	in.Price = price

	if raw, ok := c.GetPostForm("available"); ok && raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "available must be true or false")
			return in, false
		}
		in.Available = available
	}
	return in, true
}
