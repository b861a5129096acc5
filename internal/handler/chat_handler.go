package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/novy-stil/service-atelier/internal/application"
	"github.com/novy-stil/service-atelier/internal/domain/chat"
	"github.com/novy-stil/service-atelier/pkg/middleware"
	"github.com/novy-stil/service-atelier/pkg/response"
)

// Assistant answers chat messages.
type Assistant interface {
	Answer(ctx context.Context, text string, audience chat.Audience) application.ChatResponse
}

// ChatHandler handles the assistant endpoints.
type ChatHandler struct {
	service Assistant
	logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service Assistant, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

// RegisterRoutes registers chat routes. limitMW guards the public endpoint.
func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup, authMW, limitMW gin.HandlerFunc) {
	chatGroup := r.Group("/chat")
	{
		chatGroup.POST("", limitMW, h.Chat)
		chatGroup.POST("/authenticated", authMW, h.ChatAuthenticated)
	}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req application.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, h.service.Answer(c.Request.Context(), req.Text, chat.AudiencePublic))
}

// ChatAuthenticated handles POST /chat/authenticated.
func (h *ChatHandler) ChatAuthenticated(c *gin.Context) {
	var req application.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if p, ok := middleware.GetPrincipal(c); ok {
		h.logger.Info("chat message from user", zap.Int64("user_id", p.UserID), zap.String("email", p.Email))
	}

	response.Success(c, h.service.Answer(c.Request.Context(), req.Text, chat.AudienceAuthenticated))
}
