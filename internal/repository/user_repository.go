package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	userDomain "github.com/novy-stil/service-atelier/internal/domain/user"
	"github.com/novy-stil/service-atelier/pkg/database"
	"github.com/novy-stil/service-atelier/pkg/domain"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	Email          string    `gorm:"uniqueIndex;not null;size:320"`
	HashedPassword string    `gorm:"not null"`
	IsActive       bool      `gorm:"not null"`
	IsSuperuser    bool      `gorm:"not null"`
	IsVerified     bool      `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string {
	return "users"
}

// GormUserRepository is the GORM-based implementation of UserRepository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves a user by id.
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*userDomain.User, error) {
	var model UserModel
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return toDomainUser(&model), nil
}

// FindByEmail retrieves a user by normalized email.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	var model UserModel
	if err := database.Conn(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", "")
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return toDomainUser(&model), nil
}

// Save inserts a new user.
func (r *GormUserRepository) Save(ctx context.Context, u *userDomain.User) error {
	model := toUserModel(u)
	if err := database.Conn(ctx, r.db).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("a user with this email already exists")
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	u.AssignID(model.ID)
	return nil
}

// Update persists flags and password of an existing user.
func (r *GormUserRepository) Update(ctx context.Context, u *userDomain.User) error {
	result := database.Conn(ctx, r.db).
		Model(&UserModel{}).
		Where("id = ?", u.ID()).
		Updates(map[string]interface{}{
			"hashed_password": u.HashedPassword(),
			"is_active":       u.IsActive(),
			"is_superuser":    u.IsSuperuser(),
			"is_verified":     u.IsVerified(),
			"updated_at":      u.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("User", strconv.FormatInt(u.ID(), 10))
	}
	return nil
}

func toUserModel(u *userDomain.User) *UserModel {
	return &UserModel{
		ID:             u.ID(),
		Email:          u.Email(),
		HashedPassword: u.HashedPassword(),
		IsActive:       u.IsActive(),
		IsSuperuser:    u.IsSuperuser(),
		IsVerified:     u.IsVerified(),
		CreatedAt:      u.CreatedAt(),
		UpdatedAt:      u.UpdatedAt(),
	}
}

func toDomainUser(m *UserModel) *userDomain.User {
	return userDomain.ReconstructUser(
		m.ID,
		m.Email,
		m.HashedPassword,
		m.IsActive,
		m.IsSuperuser,
		m.IsVerified,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
