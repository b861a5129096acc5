package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/novy-stil/service-atelier/internal/application"
	"github.com/novy-stil/service-atelier/pkg/domain"
	"github.com/novy-stil/service-atelier/pkg/middleware"
	"github.com/novy-stil/service-atelier/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BookingAdminAPI is the administrator booking API used by AdminHandler.
type BookingAdminAPI interface {
	ListAllOrders(ctx context.Context, page, limit int) (*domain.PaginatedResult[application.OrderAdminDTO], error)
	ListAllReservations(ctx context.Context, page, limit int) (*domain.PaginatedResult[application.ReservationAdminDTO], error)
	UpdateOrderStatus(ctx context.Context, orderID int64, req application.UpdateOrderStatusRequest) (*application.OrderDTO, error)
	DeleteOrder(ctx context.Context, adminID, orderID int64) error
	DeleteReservation(ctx context.Context, adminID, reservationID int64) error
	GetOrderStats(ctx context.Context) (*application.OrderStatsDTO, error)
	ExportOrders(ctx context.Context) ([]byte, error)
}

// AdminHandler handles admin HTTP requests for order and reservation management.
type AdminHandler struct {
	service BookingAdminAPI
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service BookingAdminAPI) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers admin routes. Every route needs a superuser.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	orders := r.Group("/orders")
	orders.Use(authMW, adminMW)
	{
		orders.GET("/all", h.ListOrders)
		orders.GET("/export", h.ExportOrders)
		orders.PATCH("/:id/status", h.UpdateOrderStatus)
		orders.DELETE("/:id", h.DeleteOrder)
	}

	reservations := r.Group("/reservations")
	reservations.Use(authMW, adminMW)
	{
		reservations.GET("/all", h.ListReservations)
		reservations.DELETE("/:id", h.DeleteReservation)
	}

	admin := r.Group("/admin")
	admin.Use(authMW, adminMW)
	{
		admin.GET("/stats/orders", h.OrderStats)
	}
}

// ListOrders handles GET /orders/all.
func (h *AdminHandler) ListOrders(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListAllOrders(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListReservations handles GET /reservations/all.
func (h *AdminHandler) ListReservations(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListAllReservations(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// UpdateOrderStatus handles PATCH /orders/:id/status.
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	var req application.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateOrderStatus(c.Request.Context(), orderID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteOrder handles DELETE /orders/:id.
func (h *AdminHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id", "order")
	if !ok {
		return
	}
	adminID, _ := middleware.GetUserID(c)

	if err := h.service.DeleteOrder(c.Request.Context(), adminID, orderID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, deletedResponse{OK: true})
}

// DeleteReservation handles DELETE /reservations/:id.
func (h *AdminHandler) DeleteReservation(c *gin.Context) {
	reservationID, ok := parseID(c, "id", "reservation")
	if !ok {
		return
	}
	adminID, _ := middleware.GetUserID(c)

	if err := h.service.DeleteReservation(c.Request.Context(), adminID, reservationID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, deletedResponse{OK: true})
}

// OrderStats handles GET /admin/stats/orders.
func (h *AdminHandler) OrderStats(c *gin.Context) {
	stats, err := h.service.GetOrderStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ExportOrders handles GET /orders/export and streams an .xlsx file.
func (h *AdminHandler) ExportOrders(c *gin.Context) {
	data, err := h.service.ExportOrders(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
