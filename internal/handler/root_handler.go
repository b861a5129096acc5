package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRootRoute serves a short service descriptor at /.
func RegisterRootRoute(r gin.IRouter, service, version string) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": service,
			"version": version,
			"endpoints": gin.H{
				"auth":         []string{"POST /auth/register", "POST /auth/login", "GET /users/me"},
				"profile":      []string{"GET /profile", "PUT /profile", "POST /profile/photo"},
				"costumes":     []string{"GET /costumes", "GET /costumes/:id", "GET /costumes/:id/availability", "POST /costumes", "PUT /costumes/:id", "DELETE /costumes/:id"},
				"orders":       []string{"POST /orders", "GET /orders/me", "GET /orders/all", "PATCH /orders/:id/status", "DELETE /orders/:id", "GET /orders/export"},
				"reservations": []string{"POST /reservations", "GET /reservations/me", "GET /reservations/all", "DELETE /reservations/:id"},
				"admin":        []string{"GET /admin/stats/orders"},
				"chat":         []string{"POST /chat", "POST /chat/authenticated"},
				"operations":   []string{"GET /health", "GET /health/ready", "GET /metrics"},
			},
		})
	})
}
