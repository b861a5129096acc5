package booking

import "context"

// Kind names a booking variant.
type Kind string

const (
	KindOrder       Kind = "order"
	KindReservation Kind = "reservation"
)

// Ref identifies a single booking across both variants.
type Ref struct {
	Kind Kind
	ID   int64
}

// Entry is one booked date range of a costume.
type Entry struct {
	ID        int64
	Kind      Kind
	CostumeID int64
	Range     DateRange
}

// Ref returns the entry's identity.
func (e Entry) Ref() Ref {
	return Ref{Kind: e.Kind, ID: e.ID}
}

// Calendar reads the booked ranges of costumes across orders and reservations.
type Calendar interface {
	// FindOverlapping returns the costume's bookings that overlap window, or all
	// of them when window is nil. Reservations come first, then orders, each by id.
	FindOverlapping(ctx context.Context, costumeID int64, window *DateRange) ([]Entry, error)

	// Lock serializes calendar writers of one costume until the surrounding
	// transaction ends.
	Lock(ctx context.Context, costumeID int64) error
}
