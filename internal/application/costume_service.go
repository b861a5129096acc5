package application

import (
	"context"
	"io"

	"go.uber.org/zap"

	costumeDomain "github.com/novy-stil/service-atelier/internal/domain/costume"
	"github.com/novy-stil/service-atelier/internal/storage"
)

// CostumeInput holds the editable costume fields from a form.
type CostumeInput struct {
	Title       string
	Description string
	Price       int64
	Available   bool
}

// ImageUpload is an uploaded file.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// CostumeDTO is the response representation of a costume.
type CostumeDTO struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Price       int64   `json:"price"`
	Available   bool    `json:"available"`
	ImageURL    string  `json:"image_url"`
}

// CostumeService manages the costume catalog.
type CostumeService struct {
	repo   costumeDomain.CostumeRepository
	images storage.ImageStore
	logger *zap.Logger
}

// NewCostumeService creates a new CostumeService.
func NewCostumeService(repo costumeDomain.CostumeRepository, images storage.ImageStore, logger *zap.Logger) *CostumeService {
	return &CostumeService{repo: repo, images: images, logger: logger}
}

// CreateCostume stores the image and then the costume.
func (s *CostumeService) CreateCostume(ctx context.Context, in CostumeInput, image ImageUpload) (*CostumeDTO, error) {
	name, err := storage.ImageName(image.Filename)
	if err != nil {
		return nil, err
	}
	// Validate fields before touching storage.
	if _, err := costumeDomain.NewCostume(in.Title, in.Description, in.Price, in.Available, name); err != nil {
		return nil, err
	}

	key, err := s.images.Save(ctx, name, image.Content)
	if err != nil {
		return nil, err
	}
	c, err := costumeDomain.NewCostume(in.Title, in.Description, in.Price, in.Available, key)
	if err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}

	s.logger.Info("costume created", zap.Int64("costume_id", c.ID()), zap.String("title", c.Title()))
	result := s.toCostumeDTO(c)
	return &result, nil
}

// ListCostumes returns the whole catalog.
func (s *CostumeService) ListCostumes(ctx context.Context) ([]CostumeDTO, error) {
	costumes, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]CostumeDTO, len(costumes))
	for i, c := range costumes {
		result[i] = s.toCostumeDTO(c)
	}
	return result, nil
}

// GetCostume returns one costume.
func (s *CostumeService) GetCostume(ctx context.Context, id int64) (*CostumeDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := s.toCostumeDTO(c)
	return &result, nil
}

// UpdateCostume replaces the fields and, when image is not nil, the image.
func (s *CostumeService) UpdateCostume(ctx context.Context, id int64, in CostumeInput, image *ImageUpload) (*CostumeDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(in.Title, in.Description, in.Price, in.Available); err != nil {
		return nil, err
	}

	var newKey, oldKey string
	if image != nil {
		name, err := storage.ImageName(image.Filename)
		if err != nil {
			return nil, err
		}
		newKey, err = s.images.Save(ctx, name, image.Content)
		if err != nil {
			return nil, err
		}
		oldKey = c.ReplaceImage(newKey)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		if newKey != "" {
			s.removeImage(ctx, newKey)
		}
		return nil, err
	}
	if oldKey != "" {
		s.removeImage(ctx, oldKey)
	}

	s.logger.Info("costume updated", zap.Int64("costume_id", id), zap.Bool("image_replaced", newKey != ""))
	result := s.toCostumeDTO(c)
	return &result, nil
}

// DeleteCostume removes the costume, its image and its reservations.
func (s *CostumeService) DeleteCostume(ctx context.Context, id int64) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImage(ctx, c.ImageFilename())
	s.logger.Info("costume deleted", zap.Int64("costume_id", id))
	return nil
}

func (s *CostumeService) removeImage(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove image", zap.String("key", key), zap.Error(err))
	}
}

func (s *CostumeService) toCostumeDTO(c *costumeDomain.Costume) CostumeDTO {
	return CostumeDTO{
		ID:          c.ID(),
		Title:       c.Title(),
		Description: optional(c.Description()),
		Price:       c.Price(),
		Available:   c.Available(),
		ImageURL:    s.images.URL(c.ImageFilename()),
	}
}
