package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	userDomain "github.com/novy-stil/service-atelier/internal/domain/user"
	"github.com/novy-stil/service-atelier/pkg/auth"
	"github.com/novy-stil/service-atelier/pkg/domain"
)

// RegisterRequest holds the data needed to create an account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest holds credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisteredDTO is returned after registration.
type RegisteredDTO struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// TokenDTO is an issued access token.
type TokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// UserDTO is the response representation of a user.
type UserDTO struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuthService handles accounts and tokens.
type AuthService struct {
	users  userDomain.UserRepository
	jwt    *auth.JWTManager
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users userDomain.UserRepository, jwt *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, logger: logger}
}

// Register creates an active, unprivileged account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisteredDTO, error) {
	if err := userDomain.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u, err := userDomain.NewUser(req.Email, hash)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID()), zap.String("email", u.Email()))
	return &RegisteredDTO{UserID: u.ID(), Email: u.Email()}, nil
}

// Login checks credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenDTO, error) {
	invalid := domain.NewUnauthorizedError("invalid email or password")

	email, err := userDomain.NormalizeEmail(req.Email)
	if err != nil {
		return nil, invalid
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if code, ok := domain.CodeOf(err); ok && code == domain.CodeNotFound {
			return nil, invalid
		}
		return nil, err
	}
	if !auth.CheckPassword(u.HashedPassword(), req.Password) {
		return nil, invalid
	}
	if !u.IsActive() {
		return nil, domain.NewUnauthorizedError("account is inactive")
	}

	token, err := s.jwt.GenerateAccessToken(u.ID(), u.Email(), u.IsSuperuser())
	if err != nil {
		return nil, err
	}
	return &TokenDTO{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.jwt.AccessTTL().Seconds()),
	}, nil
}

// GetUser returns a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := toUserDTO(u)
	return &result, nil
}

// ResolvePrincipal loads the current flags of a token's user. Missing and
// inactive users are rejected.
func (s *AuthService) ResolvePrincipal(ctx context.Context, userID int64) (*auth.Principal, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return nil, domain.NewUnauthorizedError("account is inactive")
	}
	return &auth.Principal{UserID: u.ID(), Email: u.Email(), Superuser: u.IsSuperuser()}, nil
}

// EnsureSuperuser creates the account if absent, otherwise grants it the
// superuser flags. forcePassword also resets the password of an existing account.
func (s *AuthService) EnsureSuperuser(ctx context.Context, email, password string, forcePassword bool) (*UserDTO, error) {
	email, err := userDomain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if code, ok := domain.CodeOf(err); !ok || code != domain.CodeNotFound {
			return nil, err
		}
		if err := userDomain.ValidatePassword(password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		u, err = userDomain.NewUser(email, hash)
		if err != nil {
			return nil, err
		}
		u.PromoteToSuperuser()
		if err := s.users.Save(ctx, u); err != nil {
			return nil, err
		}
		s.logger.Info("superuser created", zap.String("email", email))
		result := toUserDTO(u)
		return &result, nil
	}

	changed := u.PromoteToSuperuser()
	if forcePassword {
		if err := userDomain.ValidatePassword(password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		u.ChangePassword(hash)
		changed = true
	}
	if changed {
		if err := s.users.Update(ctx, u); err != nil {
			return nil, err
		}
		s.logger.Info("superuser updated", zap.String("email", email), zap.Bool("password_reset", forcePassword))
	}
	result := toUserDTO(u)
	return &result, nil
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{
		ID:          u.ID(),
		Email:       u.Email(),
		IsActive:    u.IsActive(),
		IsSuperuser: u.IsSuperuser(),
		IsVerified:  u.IsVerified(),
		CreatedAt:   u.CreatedAt(),
	}
}
