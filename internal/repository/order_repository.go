package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/novy-stil/service-atelier/internal/domain/booking"
	orderDomain "github.com/novy-stil/service-atelier/internal/domain/order"
	"github.com/novy-stil/service-atelier/pkg/database"
	"github.com/novy-stil/service-atelier/pkg/domain"
)

// OrderModel is the GORM model for the orders table.
type OrderModel struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	UserID    int64      `gorm:"index;not null"`
	CostumeID *int64     `gorm:"index"`
	Title     string     `gorm:"not null;size:500"`
	Phone     *string    `gorm:"size:50"`
	DateFrom  *time.Time `gorm:"type:date"`
	DateTo    *time.Time `gorm:"type:date"`
	Status    string     `gorm:"not null;size:30;index;default:'new'"`
	CreatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (OrderModel) TableName() string {
	return "orders"
}

type orderListingRow struct {
	OrderModel   `gorm:"embedded"`
	UserEmail    string
	CostumeTitle *string
}

// GormOrderRepository is the GORM-based implementation of OrderRepository.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID retrieves an order by id.
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*orderDomain.Order, error) {
	var model OrderModel
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Order", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	return toDomainOrder(&model), nil
}

// FindByUserID returns the user's orders, newest first.
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID int64) ([]*orderDomain.Order, error) {
	var models []OrderModel
	if err := database.Conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find user orders: %w", err)
	}
	orders := make([]*orderDomain.Order, len(models))
	for i := range models {
		orders[i] = toDomainOrder(&models[i])
	}
	return orders, nil
}

// ListAll returns orders with owner email and costume title, newest first.
func (r *GormOrderRepository) ListAll(ctx context.Context, page, limit int) ([]orderDomain.Listing, int64, error) {
	conn := database.Conn(ctx, r.db)

	var total int64
	if err := conn.Model(&OrderModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := conn.Table("orders").
		Select("orders.*, users.email AS user_email, costumes.title AS costume_title").
		Joins("JOIN users ON users.id = orders.user_id").
		Joins("LEFT JOIN costumes ON costumes.id = orders.costume_id").
		Order("orders.created_at DESC, orders.id DESC")
	if limit > 0 {
		query = query.Offset((page - 1) * limit).Limit(limit)
	}

	var rows []orderListingRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	listings := make([]orderDomain.Listing, len(rows))
	for i := range rows {
		listings[i] = orderDomain.Listing{
			Order:        toDomainOrder(&rows[i].OrderModel),
			UserEmail:    rows[i].UserEmail,
			CostumeTitle: rows[i].CostumeTitle,
		}
	}
	return listings, total, nil
}

// CountByStatus returns order counts grouped by status.
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := database.Conn(ctx, r.db).Model(&OrderModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save inserts a new order.
func (r *GormOrderRepository) Save(ctx context.Context, o *orderDomain.Order) error {
	model := toOrderModel(o)
	if err := database.Conn(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	o.AssignID(model.ID, model.CreatedAt)
	return nil
}

// UpdateStatus persists the order's status.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, o *orderDomain.Order) error {
	result := database.Conn(ctx, r.db).
		Model(&OrderModel{}).
		Where("id = ?", o.ID()).
		Update("status", o.Status().String())
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Order", strconv.FormatInt(o.ID(), 10))
	}
	return nil
}

// Delete removes an order.
func (r *GormOrderRepository) Delete(ctx context.Context, id int64) error {
	result := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&OrderModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func toOrderModel(o *orderDomain.Order) *OrderModel {
	m := &OrderModel{
		ID:        o.ID(),
		UserID:    o.UserID(),
		CostumeID: o.CostumeID(),
		Title:     o.Title(),
		Phone:     nullableString(o.Phone()),
		Status:    o.Status().String(),
		CreatedAt: o.CreatedAt(),
	}
	if d := o.Dates(); d != nil {
		from, to := d.From, d.To
		m.DateFrom, m.DateTo = &from, &to
	}
	return m
}

func toDomainOrder(m *OrderModel) *orderDomain.Order {
	var dates *booking.DateRange
	if m.DateFrom != nil && m.DateTo != nil {
		dates = &booking.DateRange{From: m.DateFrom.UTC(), To: m.DateTo.UTC()}
	}
	return orderDomain.ReconstructOrder(
		m.ID,
		m.UserID,
		m.CostumeID,
		m.Title,
		derefString(m.Phone),
		orderDomain.Status(m.Status),
		dates,
		m.CreatedAt,
	)
}
