package reservation

import (
	"time"

	"github.com/novy-stil/service-atelier/internal/domain/booking"
	"github.com/novy-stil/service-atelier/pkg/domain"
)

// Reservation holds a costume for a closed range of days.
type Reservation struct {
	id        int64
	userID    int64
	costumeID int64
	dates     booking.DateRange
	createdAt time.Time
}

// NewReservation creates a reservation that has not been stored yet.
func NewReservation(userID, costumeID int64, dates booking.DateRange) (*Reservation, error) {
	if userID <= 0 {
		return nil, domain.NewValidationError("user ID is required")
	}
	if costumeID <= 0 {
		return nil, domain.NewValidationError("costume ID is required")
	}
	return &Reservation{
		userID:    userID,
		costumeID: costumeID,
		dates:     dates,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructReservation rebuilds a Reservation from persistence data (no validation).
func ReconstructReservation(id, userID, costumeID int64, dates booking.DateRange, createdAt time.Time) *Reservation {
	return &Reservation{
		id:        id,
		userID:    userID,
		costumeID: costumeID,
		dates:     dates,
		createdAt: createdAt,
	}
}

// AssignID records the id and creation time given by storage.
func (r *Reservation) AssignID(id int64, createdAt time.Time) {
	r.id = id
	if !createdAt.IsZero() {
		r.createdAt = createdAt
	}
}

func (r *Reservation) ID() int64                { return r.id }
func (r *Reservation) UserID() int64            { return r.userID }
func (r *Reservation) CostumeID() int64         { return r.costumeID }
func (r *Reservation) Dates() booking.DateRange { return r.dates }
func (r *Reservation) CreatedAt() time.Time     { return r.createdAt }
