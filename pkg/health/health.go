package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Checker is an extra readiness dependency such as a cache.
type Checker interface {
	Ping(ctx context.Context) error
}

// Handler serves liveness and readiness probes.
type Handler struct {
	db       *gorm.DB
	service  string
	checkers map[string]Checker
}

// NewHandler creates a health handler for the named service.
func NewHandler(db *gorm.DB, service string) *Handler {
	return &Handler{db: db, service: service, checkers: make(map[string]Checker)}
}

// WithChecker adds a named readiness dependency.
func (h *Handler) WithChecker(name string, c Checker) *Handler {
	h.checkers[name] = c
	return h
}

// RegisterRoutes mounts /health and /health/ready.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.live)
	r.GET("/health/ready", h.ready)
}

func (h *Handler) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.service})
}

func (h *Handler) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if sqlDB, err := h.db.DB(); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	for name, checker := range h.checkers {
		if err := checker.Ping(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "service": h.service, "checks": checks})
}
