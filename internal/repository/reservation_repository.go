package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/novy-stil/service-atelier/internal/domain/booking"
	reservationDomain "github.com/novy-stil/service-atelier/internal/domain/reservation"
	"github.com/novy-stil/service-atelier/pkg/database"
)

// ReservationModel is the GORM model for the reservations table.
type ReservationModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"index;not null"`
	CostumeID int64     `gorm:"index;not null"`
	DateFrom  time.Time `gorm:"type:date;not null"`
	DateTo    time.Time `gorm:"type:date;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReservationModel) TableName() string {
	return "reservations"
}

type reservationListingRow struct {
	ReservationModel `gorm:"embedded"`
	UserEmail        string
	CostumeTitle     string
}

// GormReservationRepository is the GORM-based implementation of ReservationRepository.
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository.
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByUserID returns the user's reservations, latest date_from first.
func (r *GormReservationRepository) FindByUserID(ctx context.Context, userID int64) ([]*reservationDomain.Reservation, error) {
	var models []ReservationModel
	if err := database.Conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("date_from DESC, id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find user reservations: %w", err)
	}
	out := make([]*reservationDomain.Reservation, len(models))
	for i := range models {
		out[i] = toDomainReservation(&models[i])
	}
	return out, nil
}

// ListAll returns reservations with owner email and costume title.
func (r *GormReservationRepository) ListAll(ctx context.Context, page, limit int) ([]reservationDomain.Listing, int64, error) {
	conn := database.Conn(ctx, r.db)

	var total int64
	if err := conn.Model(&ReservationModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	query := conn.Table("reservations").
		Select("reservations.*, users.email AS user_email, costumes.title AS costume_title").
		Joins("JOIN users ON users.id = reservations.user_id").
		Joins("JOIN costumes ON costumes.id = reservations.costume_id").
		Order("reservations.date_from DESC, reservations.id DESC")
	if limit > 0 {
		query = query.Offset((page - 1) * limit).Limit(limit)
	}

	var rows []reservationListingRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}

	listings := make([]reservationDomain.Listing, len(rows))
	for i := range rows {
		listings[i] = reservationDomain.Listing{
			Reservation:  toDomainReservation(&rows[i].ReservationModel),
			UserEmail:    rows[i].UserEmail,
			CostumeTitle: rows[i].CostumeTitle,
		}
	}
	return listings, total, nil
}

// Save inserts a new reservation.
func (r *GormReservationRepository) Save(ctx context.Context, res *reservationDomain.Reservation) error {
	model := toReservationModel(res)
	if err := database.Conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	res.AssignID(model.ID, model.CreatedAt)
	return nil
}

// Delete removes a reservation.
func (r *GormReservationRepository) Delete(ctx context.Context, id int64) error {
	result := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&ReservationModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func toReservationModel(res *reservationDomain.Reservation) *ReservationModel {
	return &ReservationModel{
		ID:        res.ID(),
		UserID:    res.UserID(),
		CostumeID: res.CostumeID(),
		DateFrom:  res.Dates().From,
		DateTo:    res.Dates().To,
		CreatedAt: res.CreatedAt(),
	}
}

func toDomainReservation(m *ReservationModel) *reservationDomain.Reservation {
	return reservationDomain.ReconstructReservation(
		m.ID,
		m.UserID,
		m.CostumeID,
		booking.DateRange{From: m.DateFrom.UTC(), To: m.DateTo.UTC()},
		m.CreatedAt,
	)
}
