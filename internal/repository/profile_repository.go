package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userDomain "github.com/novy-stil/service-atelier/internal/domain/user"
	"github.com/novy-stil/service-atelier/pkg/database"
)

// ProfileModel is the GORM model for the profiles table.
type ProfileModel struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	UserID        int64   `gorm:"uniqueIndex;not null"`
	Name          *string `gorm:"size:200"`
	Phone         *string `gorm:"size:50"`
	Age           *int
	PhotoFilename *string `gorm:"size:255"`
}

// TableName returns the table name for the GORM model.
func (ProfileModel) TableName() string {
	return "profiles"
}

// GormProfileRepository is the GORM-based implementation of ProfileRepository.
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository.
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByUserID returns nil, nil when the user has no profile.
func (r *GormProfileRepository) FindByUserID(ctx context.Context, userID int64) (*userDomain.Profile, error) {
	var model ProfileModel
	if err := database.Conn(ctx, r.db).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return toDomainProfile(&model), nil
}

// Upsert inserts the profile or overwrites the existing row of the same user.
func (r *GormProfileRepository) Upsert(ctx context.Context, p *userDomain.Profile) error {
	model := toProfileModel(p)
	err := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "age", "photo_filename"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	p.AssignID(model.ID)
	return nil
}

func toProfileModel(p *userDomain.Profile) *ProfileModel {
	return &ProfileModel{
		ID:            p.ID(),
		UserID:        p.UserID(),
		Name:          nullableString(p.Name()),
		Phone:         nullableString(p.Phone()),
		Age:           p.Age(),
		PhotoFilename: nullableString(p.PhotoFilename()),
	}
}

func toDomainProfile(m *ProfileModel) *userDomain.Profile {
	return userDomain.ReconstructProfile(
		m.ID,
		m.UserID,
		derefString(m.Name),
		derefString(m.Phone),
		m.Age,
		derefString(m.PhotoFilename),
	)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
