package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	costumeDomain "github.com/novy-stil/service-atelier/internal/domain/costume"
	"github.com/novy-stil/service-atelier/pkg/database"
	"github.com/novy-stil/service-atelier/pkg/domain"
)

// CostumeModel is the GORM model for the costumes table.
type CostumeModel struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	Title         string  `gorm:"not null;size:200"`
	Description   *string `gorm:"type:text"`
	ImageFilename string  `gorm:"not null;size:255"`
	Price         int64   `gorm:"not null"`
	Available     bool    `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CostumeModel) TableName() string {
	return "costumes"
}

// GormCostumeRepository is the GORM-based implementation of CostumeRepository.
type GormCostumeRepository struct {
	db *gorm.DB
}

// NewGormCostumeRepository creates a new GormCostumeRepository.
func NewGormCostumeRepository(db *gorm.DB) *GormCostumeRepository {
	return &GormCostumeRepository{db: db}
}

// FindByID retrieves a costume by id.
func (r *GormCostumeRepository) FindByID(ctx context.Context, id int64) (*costumeDomain.Costume, error) {
	var model CostumeModel
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Costume", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find costume by ID: %w", err)
	}
	return toDomainCostume(&model), nil
}

// FindAll returns every costume ordered by id.
func (r *GormCostumeRepository) FindAll(ctx context.Context) ([]*costumeDomain.Costume, error) {
	var models []CostumeModel
	if err := database.Conn(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list costumes: %w", err)
	}
	costumes := make([]*costumeDomain.Costume, len(models))
	for i := range models {
		costumes[i] = toDomainCostume(&models[i])
	}
	return costumes, nil
}

// Save inserts a new costume.
func (r *GormCostumeRepository) Save(ctx context.Context, c *costumeDomain.Costume) error {
	model := toCostumeModel(c)
	if err := database.Conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save costume: %w", err)
	}
	c.AssignID(model.ID)
	return nil
}

// Update persists changes to an existing costume.
func (r *GormCostumeRepository) Update(ctx context.Context, c *costumeDomain.Costume) error {
	model := toCostumeModel(c)
	result := database.Conn(ctx, r.db).
		Model(&CostumeModel{}).
		Where("id = ?", c.ID()).
		Updates(map[string]interface{}{
			"title":          model.Title,
			"description":    model.Description,
			"image_filename": model.ImageFilename,
			"price":          model.Price,
			"available":      model.Available,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update costume: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Costume", strconv.FormatInt(c.ID(), 10))
	}
	return nil
}

// Delete removes a costume; foreign keys cascade to its reservations and
// clear the reference on its orders.
func (r *GormCostumeRepository) Delete(ctx context.Context, id int64) error {
	result := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&CostumeModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete costume: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Costume", strconv.FormatInt(id, 10))
	}
	return nil
}

func toCostumeModel(c *costumeDomain.Costume) *CostumeModel {
	return &CostumeModel{
		ID:            c.ID(),
		Title:         c.Title(),
		Description:   nullableString(c.Description()),
		ImageFilename: c.ImageFilename(),
		Price:         c.Price(),
		Available:     c.Available(),
	}
}

func toDomainCostume(m *CostumeModel) *costumeDomain.Costume {
	return costumeDomain.ReconstructCostume(
		m.ID,
		m.Title,
		derefString(m.Description),
		m.Price,
		m.Available,
		m.ImageFilename,
	)
}
