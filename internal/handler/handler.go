package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/novy-stil/service-atelier/pkg/middleware"
	"github.com/novy-stil/service-atelier/pkg/response"
)

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

// parseID reads a positive integer path parameter, writing 400 on failure.
func parseID(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.BadRequest(c, "invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// currentUserID returns the caller's id, writing 401 when unauthenticated.
func currentUserID(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return 0, false
	}
	return userID, true
}

type deletedResponse struct {
	OK bool `json:"ok"`
}
