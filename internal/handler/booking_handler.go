package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/novy-stil/service-atelier/internal/application"
	"github.com/novy-stil/service-atelier/pkg/response"
)

// BookingAPI is the customer-facing booking API used by BookingHandler.
type BookingAPI interface {
	CreateOrder(ctx context.Context, userID int64, req application.CreateOrderRequest) (*application.OrderDTO, error)
	CreateReservation(ctx context.Context, userID int64, req application.CreateReservationRequest) (*application.ReservationDTO, error)
	ListConflicts(ctx context.Context, costumeID int64, fromDate, toDate string) ([]application.ConflictDTO, error)
	GetMyOrders(ctx context.Context, userID int64) ([]application.OrderDTO, error)
	GetMyReservations(ctx context.Context, userID int64) ([]application.ReservationDTO, error)
}

// BookingHandler handles orders, reservations and costume availability.
type BookingHandler struct {
	service BookingAPI
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service BookingAPI) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all customer booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	orders := r.Group("/orders")
	orders.Use(authMW)
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/me", h.ListMyOrders)
	}

	reservations := r.Group("/reservations")
	reservations.Use(authMW)
	{
		reservations.POST("", h.CreateReservation)
		reservations.GET("/me", h.ListMyReservations)
	}

	r.GET("/costumes/:id/availability", h.Availability)
}

// CreateOrder handles POST /orders.
func (h *BookingHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req application.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListMyOrders handles GET /orders/me.
func (h *BookingHandler) ListMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.service.GetMyOrders(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateReservation handles POST /reservations.
func (h *BookingHandler) CreateReservation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req application.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateReservation(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListMyReservations handles GET /reservations/me.
func (h *BookingHandler) ListMyReservations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.service.GetMyReservations(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Availability handles GET /costumes/:id/availability?from_date=&to_date=.
func (h *BookingHandler) Availability(c *gin.Context) {
	costumeID, ok := parseID(c, "id", "costume")
	if !ok {
		return
	}

	result, err := h.service.ListConflicts(c.Request.Context(), costumeID, c.Query("from_date"), c.Query("to_date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
