package order

import (
	"strings"
	"time"

	"github.com/novy-stil/service-atelier/internal/domain/booking"
	"github.com/novy-stil/service-atelier/pkg/domain"
)

// Order is a tailoring request. With a costume and dates it also books that
// costume for the period.
type Order struct {
	id        int64
	userID    int64
	costumeID *int64
	title     string
	phone     string
	status    Status
	dates     *booking.DateRange
	createdAt time.Time
}

// NewOrder validates and creates an order that has not been stored yet.
func NewOrder(userID int64, title, phone string, status Status, costumeID *int64, dates *booking.DateRange) (*Order, error) {
	title = strings.TrimSpace(title)
	if userID <= 0 {
		return nil, domain.NewValidationError("user ID is required")
	}
	if title == "" {
		return nil, domain.NewValidationError("order title is required")
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError("invalid order status: " + status.String())
	}
	if dates != nil && costumeID == nil {
		return nil, domain.NewValidationError("booking dates require a costume")
	}
	return &Order{
		userID:    userID,
		costumeID: costumeID,
		title:     title,
		phone:     strings.TrimSpace(phone),
		status:    status,
		dates:     dates,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructOrder rebuilds an Order from persistence data (no validation).
func ReconstructOrder(
	id, userID int64,
	costumeID *int64,
	title, phone string,
	status Status,
	dates *booking.DateRange,
	createdAt time.Time,
) *Order {
	return &Order{
		id:        id,
		userID:    userID,
		costumeID: costumeID,
		title:     title,
		phone:     phone,
		status:    status,
		dates:     dates,
		createdAt: createdAt,
	}
}

// SetStatus is the administrator override; any valid status is accepted.
func (o *Order) SetStatus(s Status) error {
	if !s.IsValid() {
		return domain.NewValidationError("invalid order status: " + s.String())
	}
	o.status = s
	return nil
}

// Advance moves the order forward in its lifecycle.
func (o *Order) Advance(s Status) error {
	if !o.status.CanAdvanceTo(s) {
		return domain.NewInvalidStateError(o.status.String(), s.String())
	}
	o.status = s
	return nil
}

// IsBooking reports whether the order holds a costume for a date range.
func (o *Order) IsBooking() bool {
	return o.costumeID != nil && o.dates != nil
}

// AssignID records the id and creation time given by storage.
func (o *Order) AssignID(id int64, createdAt time.Time) {
	o.id = id
	if !createdAt.IsZero() {
		o.createdAt = createdAt
	}
}

func (o *Order) ID() int64                 { return o.id }
func (o *Order) UserID() int64             { return o.userID }
func (o *Order) CostumeID() *int64         { return o.costumeID }
func (o *Order) Title() string             { return o.title }
func (o *Order) Phone() string             { return o.phone }
func (o *Order) Status() Status            { return o.status }
func (o *Order) Dates() *booking.DateRange { return o.dates }
func (o *Order) CreatedAt() time.Time      { return o.createdAt }
