package costume

import "context"

// CostumeRepository defines the persistence contract for costumes.
type CostumeRepository interface {
	// FindByID returns a NOT_FOUND domain error when the costume is absent.
	FindByID(ctx context.Context, id int64) (*Costume, error)

	// FindAll returns every costume ordered by id.
	FindAll(ctx context.Context) ([]*Costume, error)

	// Save inserts a new costume and assigns its id.
	Save(ctx context.Context, c *Costume) error

	// Update persists changes to an existing costume.
	Update(ctx context.Context, c *Costume) error

	// Delete removes the costume. Its reservations go with it and its orders
	// lose the costume reference.
	Delete(ctx context.Context, id int64) error
}
