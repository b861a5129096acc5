package auth

import "context"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    int64
	Email     string
	Superuser bool
}

// PrincipalResolver loads the current state of a token's user, rejecting
// users that were removed or deactivated after the token was issued.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID int64) (*Principal, error)
}
