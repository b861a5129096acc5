package order

import "context"

// Listing is an order joined with the names an administrator needs.
type Listing struct {
	Order        *Order
	UserEmail    string
	CostumeTitle *string
}

// OrderRepository defines the persistence contract for orders.
type OrderRepository interface {
	// FindByID returns a NOT_FOUND domain error when the order is absent.
	FindByID(ctx context.Context, id int64) (*Order, error)

	// FindByUserID returns the user's orders, newest first.
	FindByUserID(ctx context.Context, userID int64) ([]*Order, error)

	// ListAll returns orders newest first. A limit of zero returns every order.
	ListAll(ctx context.Context, page, limit int) ([]Listing, int64, error)

	// CountByStatus returns order counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save inserts a new order and assigns its id.
	Save(ctx context.Context, o *Order) error

	// UpdateStatus persists the order's status.
	UpdateStatus(ctx context.Context, o *Order) error

	// Delete removes the order; a missing row yields booking.ErrNotFound.
	Delete(ctx context.Context, id int64) error
}
