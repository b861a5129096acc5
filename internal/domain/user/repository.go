package user

import "context"

// UserRepository defines the persistence contract for users.
type UserRepository interface {
	// FindByID returns a NOT_FOUND domain error when the user is absent.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail returns a NOT_FOUND domain error when no user has the address.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Save inserts a new user and assigns its id. A taken email yields a
	// CONFLICT domain error.
	Save(ctx context.Context, u *User) error

	// Update persists flags and password of an existing user.
	Update(ctx context.Context, u *User) error
}

// ProfileRepository defines the persistence contract for profiles.
type ProfileRepository interface {
	// FindByUserID returns nil without error when the user has no profile yet.
	FindByUserID(ctx context.Context, userID int64) (*Profile, error)

	// Upsert inserts or updates the profile of its user.
	Upsert(ctx context.Context, p *Profile) error
}
