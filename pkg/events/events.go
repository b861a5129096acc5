package events

import "time"

// Topics.
const (
	TopicBookingEvents  = "atelier.booking.events"
	TopicWorkshopEvents = "atelier.workshop.events"
)

// Booking event types published by the service.
const (
	OrderCreated       = "booking.order.created"
	OrderDeleted       = "booking.order.deleted"
	OrderStatusChanged = "booking.order.status_changed"
	ReservationCreated = "booking.reservation.created"
	ReservationDeleted = "booking.reservation.deleted"
)

// Workshop event types consumed by the service.
const (
	WorkshopOrderStarted  = "workshop.order.started"
	WorkshopOrderFinished = "workshop.order.finished"
)

// OrderCreatedEvent is published after an order is stored.
type OrderCreatedEvent struct {
	OrderID    int64     `json:"order_id"`
	UserID     int64     `json:"user_id"`
	CostumeID  *int64    `json:"costume_id,omitempty"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	DateFrom   *string   `json:"date_from,omitempty"`
	DateTo     *string   `json:"date_to,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReservationCreatedEvent is published after a reservation is stored.
type ReservationCreatedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	UserID        int64     `json:"user_id"`
	CostumeID     int64     `json:"costume_id"`
	DateFrom      string    `json:"date_from"`
	DateTo        string    `json:"date_to"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingDeletedEvent is published when an administrator removes a booking.
type BookingDeletedEvent struct {
	Kind       string    `json:"kind"`
	ID         int64     `json:"id"`
	DeletedBy  int64     `json:"deleted_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderStatusChangedEvent is published on every status change.
type OrderStatusChangedEvent struct {
	OrderID    int64     `json:"order_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WorkshopOrderEvent is sent by the workshop when work on an order starts or ends.
type WorkshopOrderEvent struct {
	OrderID    int64     `json:"order_id"`
	Master     string    `json:"master,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
