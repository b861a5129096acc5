package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/novy-stil/service-atelier/internal/application"
	"github.com/novy-stil/service-atelier/pkg/response"
)

// AccountService is the account API used by AuthHandler.
type AccountService interface {
	Register(ctx context.Context, req application.RegisterRequest) (*application.RegisteredDTO, error)
	Login(ctx context.Context, req application.LoginRequest) (*application.TokenDTO, error)
	GetUser(ctx context.Context, userID int64) (*application.UserDTO, error)
}

// AuthHandler handles registration, login and the current user.
type AuthHandler struct {
	service AccountService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service AccountService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
	r.GET("/users/me", authMW, h.Me)
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req application.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req application.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Me handles GET /users/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
