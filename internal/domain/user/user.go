package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/novy-stil/service-atelier/pkg/domain"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// User is an account of the atelier site.
type User struct {
	id             int64
	email          string
	hashedPassword string
	isActive       bool
	isSuperuser    bool
	isVerified     bool
	createdAt      time.Time
	updatedAt      time.Time
}

// NormalizeEmail validates an address and returns its canonical form.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.NewValidationError("invalid email address")
	}
	return email, nil
}

// ValidatePassword checks the password policy.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return domain.NewValidationError("password must be at least 6 characters")
	}
	return nil
}

// NewUser creates an active, unverified, non-privileged user.
func NewUser(email, hashedPassword string) (*User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if hashedPassword == "" {
		return nil, domain.NewValidationError("password hash is required")
	}
	now := time.Now().UTC()
	return &User{
		email:          email,
		hashedPassword: hashedPassword,
		isActive:       true,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructUser rebuilds a User from persistence data (no validation).
func ReconstructUser(
	id int64,
	email, hashedPassword string,
	isActive, isSuperuser, isVerified bool,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:             id,
		email:          email,
		hashedPassword: hashedPassword,
		isActive:       isActive,
		isSuperuser:    isSuperuser,
		isVerified:     isVerified,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// PromoteToSuperuser sets the superuser, active and verified flags. It
// returns false when nothing changed.
func (u *User) PromoteToSuperuser() bool {
	if u.isSuperuser && u.isActive && u.isVerified {
		return false
	}
	u.isSuperuser, u.isActive, u.isVerified = true, true, true
	u.updatedAt = time.Now().UTC()
	return true
}

// ChangePassword replaces the stored hash.
func (u *User) ChangePassword(hashedPassword string) {
	u.hashedPassword = hashedPassword
	u.updatedAt = time.Now().UTC()
}

// AssignID records the id given by storage.
func (u *User) AssignID(id int64) { u.id = id }

func (u *User) ID() int64              { return u.id }
func (u *User) Email() string          { return u.email }
func (u *User) HashedPassword() string { return u.hashedPassword }
func (u *User) IsActive() bool         { return u.isActive }
func (u *User) IsSuperuser() bool      { return u.isSuperuser }
func (u *User) IsVerified() bool       { return u.isVerified }
func (u *User) CreatedAt() time.Time   { return u.createdAt }
func (u *User) UpdatedAt() time.Time   { return u.updatedAt }
