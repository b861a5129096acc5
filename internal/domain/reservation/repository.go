package reservation

import "context"

// Listing is a reservation joined with the names an administrator needs.
type Listing struct {
	Reservation  *Reservation
	UserEmail    string
	CostumeTitle string
}

// ReservationRepository defines the persistence contract for reservations.
type ReservationRepository interface {
	// FindByUserID returns the user's reservations, latest date_from first.
	FindByUserID(ctx context.Context, userID int64) ([]*Reservation, error)

	// ListAll returns reservations with pagination, latest date_from first.
	ListAll(ctx context.Context, page, limit int) ([]Listing, int64, error)

	// Save inserts a new reservation and assigns its id.
	Save(ctx context.Context, r *Reservation) error

	// Delete removes the reservation; a missing row yields booking.ErrNotFound.
	Delete(ctx context.Context, id int64) error
}
