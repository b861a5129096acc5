package application

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	userDomain "github.com/novy-stil/service-atelier/internal/domain/user"
	"github.com/novy-stil/service-atelier/internal/storage"
)

// UpdateProfileRequest carries optional profile fields.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Age   *int    `json:"age"`
}

// ProfileDTO combines account and profile fields.
type ProfileDTO struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsVerified  bool      `json:"is_verified"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	Name        *string   `json:"name"`
	Phone       *string   `json:"phone"`
	Age         *int      `json:"age"`
	PhotoURL    *string   `json:"photo_url"`
}

// PhotoDTO is returned after a profile photo upload.
type PhotoDTO struct {
	PhotoURL string `json:"photo_url"`
}

// ProfileService manages personal details.
type ProfileService struct {
	users    userDomain.UserRepository
	profiles userDomain.ProfileRepository
	images   storage.ImageStore
	logger   *zap.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(
	users userDomain.UserRepository,
	profiles userDomain.ProfileRepository,
	images storage.ImageStore,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{users: users, profiles: profiles, images: images, logger: logger}
}

// GetProfile returns the account with its profile; missing profile fields are null.
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*ProfileDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dto := &ProfileDTO{
		ID:          u.ID(),
		Email:       u.Email(),
		IsActive:    u.IsActive(),
		IsVerified:  u.IsVerified(),
		IsSuperuser: u.IsSuperuser(),
		CreatedAt:   u.CreatedAt(),
	}
	if p != nil {
		dto.Name = optional(p.Name())
		dto.Phone = optional(p.Phone())
		dto.Age = p.Age()
		if p.PhotoFilename() != "" {
			dto.PhotoURL = optional(s.images.URL(p.PhotoFilename()))
		}
	}
	return dto, nil
}

// UpdateProfile merges the request into the profile, creating it on first write.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*ProfileDTO, error) {
	p, err := s.loadOrNew(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(userDomain.ProfileUpdate{Name: req.Name, Phone: req.Phone, Age: req.Age}); err != nil {
		return nil, err
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", zap.Int64("user_id", userID))
	return s.GetProfile(ctx, userID)
}

// UploadPhoto stores a new profile photo and removes the previous one.
func (s *ProfileService) UploadPhoto(ctx context.Context, userID int64, filename string, content io.Reader) (*PhotoDTO, error) {
	name, err := storage.ImageName(filename)
	if err != nil {
		return nil, err
	}
	p, err := s.loadOrNew(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := s.images.Save(ctx, name, content)
	if err != nil {
		return nil, err
	}
	old := p.ReplacePhoto(key)
	if err := s.profiles.Upsert(ctx, p); err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}
	if old != "" {
		s.removeImage(ctx, old)
	}

	s.logger.Info("profile photo uploaded", zap.Int64("user_id", userID))
	return &PhotoDTO{PhotoURL: s.images.URL(key)}, nil
}

func (s *ProfileService) loadOrNew(ctx context.Context, userID int64) (*userDomain.Profile, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = userDomain.NewProfile(userID)
	}
	return p, nil
}

func (s *ProfileService) removeImage(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove image", zap.String("key", key), zap.Error(err))
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
