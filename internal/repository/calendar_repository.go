package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/novy-stil/service-atelier/internal/domain/booking"
	"github.com/novy-stil/service-atelier/pkg/database"
)

// GormCalendarRepository reads booked ranges from both the reservations and
// the orders tables.
type GormCalendarRepository struct {
	db *gorm.DB
}

// NewGormCalendarRepository creates a new GormCalendarRepository.
func NewGormCalendarRepository(db *gorm.DB) *GormCalendarRepository {
	return &GormCalendarRepository{db: db}
}

// FindOverlapping returns reservations then orders of the costume, each by id.
func (r *GormCalendarRepository) FindOverlapping(ctx context.Context, costumeID int64, window *booking.DateRange) ([]booking.Entry, error) {
	conn := database.Conn(ctx, r.db)

	var reservations []ReservationModel
	q := conn.Where("costume_id = ?", costumeID)
	if window != nil {
		q = q.Where("date_from <= ?::date AND date_to >= ?::date",
			window.To.Format(booking.DateLayout), window.From.Format(booking.DateLayout))
	}
	if err := q.Order("id ASC").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to load reservations of costume: %w", err)
	}

	var orders []OrderModel
	q = conn.Where("costume_id = ? AND date_from IS NOT NULL AND date_to IS NOT NULL", costumeID)
	if window != nil {
		q = q.Where("date_from <= ?::date AND date_to >= ?::date",
			window.To.Format(booking.DateLayout), window.From.Format(booking.DateLayout))
	}
	if err := q.Order("id ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders of costume: %w", err)
	}

	entries := make([]booking.Entry, 0, len(reservations)+len(orders))
	for _, m := range reservations {
		entries = append(entries, booking.Entry{
			ID:        m.ID,
			Kind:      booking.KindReservation,
			CostumeID: m.CostumeID,
			Range:     booking.DateRange{From: m.DateFrom.UTC(), To: m.DateTo.UTC()},
		})
	}
	for _, m := range orders {
		entries = append(entries, booking.Entry{
			ID:        m.ID,
			Kind:      booking.KindOrder,
			CostumeID: costumeID,
			Range:     booking.DateRange{From: m.DateFrom.UTC(), To: m.DateTo.UTC()},
		})
	}
	return entries, nil
}

// Lock takes a transaction-scoped advisory lock on the costume's calendar.
// Outside a transaction the lock would be released immediately, so callers
// must run inside database.InTransaction.
func (r *GormCalendarRepository) Lock(ctx context.Context, costumeID int64) error {
	if err := database.Conn(ctx, r.db).Exec("SELECT pg_advisory_xact_lock(?)", costumeID).Error; err != nil {
		return fmt.Errorf("failed to lock costume calendar: %w", err)
	}
	return nil
}
