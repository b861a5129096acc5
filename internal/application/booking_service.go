package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/novy-stil/service-atelier/internal/domain/booking"
	costumeDomain "github.com/novy-stil/service-atelier/internal/domain/costume"
	orderDomain "github.com/novy-stil/service-atelier/internal/domain/order"
	reservationDomain "github.com/novy-stil/service-atelier/internal/domain/reservation"
	"github.com/novy-stil/service-atelier/internal/export"
	"github.com/novy-stil/service-atelier/internal/metrics"
	"github.com/novy-stil/service-atelier/pkg/domain"
	"github.com/novy-stil/service-atelier/pkg/events"
)

// CreateOrderRequest holds the data needed to create an order.
type CreateOrderRequest struct {
	Title     string  `json:"title" binding:"required"`
	Status    string  `json:"status"`
	Phone     string  `json:"phone"`
	CostumeID *int64  `json:"costume_id"`
	DateFrom  *string `json:"date_from"`
	DateTo    *string `json:"date_to"`
}

// CreateReservationRequest holds the data needed to reserve a costume.
type CreateReservationRequest struct {
	CostumeID int64  `json:"costume_id" binding:"required"`
	DateFrom  string `json:"date_from" binding:"required"`
	DateTo    string `json:"date_to" binding:"required"`
}

// UpdateOrderStatusRequest is the administrator's status change.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderDTO is the response representation of an order.
type OrderDTO struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	CostumeID *int64    `json:"costume_id"`
	Phone     *string   `json:"phone"`
	DateFrom  *string   `json:"date_from"`
	DateTo    *string   `json:"date_to"`
}

// OrderAdminDTO adds the owner and costume names to an order.
type OrderAdminDTO struct {
	OrderDTO
	UserID       int64   `json:"user_id"`
	UserEmail    string  `json:"user_email"`
	CostumeTitle *string `json:"costume_title"`
}

// ReservationDTO is the response representation of a reservation.
type ReservationDTO struct {
	ID        int64     `json:"id"`
	CostumeID int64     `json:"costume_id"`
	DateFrom  string    `json:"date_from"`
	DateTo    string    `json:"date_to"`
	CreatedAt time.Time `json:"created_at"`
}

// ReservationAdminDTO adds the owner and costume names to a reservation.
type ReservationAdminDTO struct {
	ReservationDTO
	UserID       int64  `json:"user_id"`
	UserEmail    string `json:"user_email"`
	CostumeTitle string `json:"costume_title"`
}

// ConflictDTO describes one booked range of a costume.
type ConflictDTO struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

// OrderStatsDTO holds order counts for the admin dashboard.
type OrderStatsDTO struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// BookingService orchestrates orders, reservations and the costume calendar.
type BookingService struct {
	costumes     costumeDomain.CostumeRepository
	orders       orderDomain.OrderRepository
	reservations reservationDomain.ReservationRepository
	calendar     booking.Calendar
	checker      *booking.ConflictChecker
	tx           TxRunner
	publisher    EventPublisher
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	costumes costumeDomain.CostumeRepository,
	orders orderDomain.OrderRepository,
	reservations reservationDomain.ReservationRepository,
	calendar booking.Calendar,
	tx TxRunner,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		costumes:     costumes,
		orders:       orders,
		reservations: reservations,
		calendar:     calendar,
		checker:      booking.NewConflictChecker(calendar),
		tx:           tx,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
	}
}

// CreateOrder stores a tailoring request. With a costume and both dates the
// costume is booked for the period.
func (s *BookingService) CreateOrder(ctx context.Context, userID int64, req CreateOrderRequest) (*OrderDTO, error) {
	status, err := orderDomain.ParseStatus(req.Status)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if (req.DateFrom == nil) != (req.DateTo == nil) {
		return nil, domain.NewValidationError("date_from and date_to must be given together")
	}

	var dates *booking.DateRange
	if req.DateFrom != nil {
		r, err := parseRange(*req.DateFrom, *req.DateTo)
		if err != nil {
			return nil, err
		}
		dates = &r
	}

	o, err := orderDomain.NewOrder(userID, req.Title, req.Phone, status, req.CostumeID, dates)
	if err != nil {
		return nil, err
	}

	switch {
	case o.IsBooking():
		err = s.book(ctx, booking.KindOrder, *o.CostumeID(), *dates, func(ctx context.Context) error {
			return s.orders.Save(ctx, o)
		})
	case o.CostumeID() != nil:
		if _, err = s.findCostume(ctx, *o.CostumeID()); err == nil {
			err = s.orders.Save(ctx, o)
		}
	default:
		err = s.orders.Save(ctx, o)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.Int64("order_id", o.ID()),
		zap.Int64("user_id", userID),
		zap.Bool("books_costume", o.IsBooking()),
	)
	s.publishOrderCreated(ctx, o)

	result := toOrderDTO(o)
	return &result, nil
}

// CreateReservation books a costume for a date range.
func (s *BookingService) CreateReservation(ctx context.Context, userID int64, req CreateReservationRequest) (*ReservationDTO, error) {
	dates, err := parseRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}
	res, err := reservationDomain.NewReservation(userID, req.CostumeID, dates)
	if err != nil {
		return nil, err
	}

	err = s.book(ctx, booking.KindReservation, req.CostumeID, dates, func(ctx context.Context) error {
		return s.reservations.Save(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation created",
		zap.Int64("reservation_id", res.ID()),
		zap.Int64("costume_id", res.CostumeID()),
		zap.Int64("user_id", userID),
		zap.String("dates", dates.String()),
	)
	s.publisher.Publish(ctx, events.TopicBookingEvents, costumeKey(res.CostumeID()), events.ReservationCreated,
		events.ReservationCreatedEvent{
			ReservationID: res.ID(),
			UserID:        res.UserID(),
			CostumeID:     res.CostumeID(),
			DateFrom:      dates.From.Format(booking.DateLayout),
			DateTo:        dates.To.Format(booking.DateLayout),
			OccurredAt:    time.Now().UTC(),
		})

	result := toReservationDTO(res)
	return &result, nil
}

// ListConflicts returns the booked ranges of a costume, optionally only those
// overlapping [fromDate, toDate]. The window applies only when both are set.
func (s *BookingService) ListConflicts(ctx context.Context, costumeID int64, fromDate, toDate string) ([]ConflictDTO, error) {
	var window *booking.DateRange
	if fromDate != "" && toDate != "" {
		r, err := parseRange(fromDate, toDate)
		if err != nil {
			return nil, err
		}
		window = &r
	}

	entries, err := s.calendar.FindOverlapping(ctx, costumeID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list costume bookings: %w", err)
	}

	result := make([]ConflictDTO, len(entries))
	for i, e := range entries {
		result[i] = ConflictDTO{
			ID:       e.ID,
			Type:     string(e.Kind),
			DateFrom: e.Range.From.Format(booking.DateLayout),
			DateTo:   e.Range.To.Format(booking.DateLayout),
		}
	}
	return result, nil
}

// GetMyOrders returns the user's orders, newest first.
func (s *BookingService) GetMyOrders(ctx context.Context, userID int64) ([]OrderDTO, error) {
	orders, err := s.orders.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]OrderDTO, len(orders))
	for i, o := range orders {
		result[i] = toOrderDTO(o)
	}
	return result, nil
}

// GetMyReservations returns the user's reservations, latest first.
func (s *BookingService) GetMyReservations(ctx context.Context, userID int64) ([]ReservationDTO, error) {
	reservations, err := s.reservations.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]ReservationDTO, len(reservations))
	for i, r := range reservations {
		result[i] = toReservationDTO(r)
	}
	return result, nil
}

// ListAllOrders returns orders of every user (admin).
func (s *BookingService) ListAllOrders(ctx context.Context, page, limit int) (*domain.PaginatedResult[OrderAdminDTO], error) {
	listings, total, err := s.orders.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]OrderAdminDTO, len(listings))
	for i, l := range listings {
		items[i] = toOrderAdminDTO(l)
	}
	result := domain.NewPaginatedResult(items, total, page, limit)
	return &result, nil
}

// ListAllReservations returns reservations of every user (admin).
func (s *BookingService) ListAllReservations(ctx context.Context, page, limit int) (*domain.PaginatedResult[ReservationAdminDTO], error) {
	listings, total, err := s.reservations.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]ReservationAdminDTO, len(listings))
	for i, l := range listings {
		items[i] = ReservationAdminDTO{
			ReservationDTO: toReservationDTO(l.Reservation),
			UserID:         l.Reservation.UserID(),
			UserEmail:      l.UserEmail,
			CostumeTitle:   l.CostumeTitle,
		}
	}
	result := domain.NewPaginatedResult(items, total, page, limit)
	return &result, nil
}

// UpdateOrderStatus sets any valid status (admin).
func (s *BookingService) UpdateOrderStatus(ctx context.Context, orderID int64, req UpdateOrderStatusRequest) (*OrderDTO, error) {
	status, err := orderDomain.ParseStatus(req.Status)
	if err != nil || req.Status == "" {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid order status %q", req.Status))
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	previous := o.Status()
	if err := o.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", previous.String()),
		zap.String("to", status.String()),
	)
	s.publishStatusChanged(ctx, o, previous, "admin")

	result := toOrderDTO(o)
	return &result, nil
}

// AdvanceOrderStatus moves an order forward on behalf of the workshop.
// Re-applying the current status is a no-op.
func (s *BookingService) AdvanceOrderStatus(ctx context.Context, orderID int64, status orderDomain.Status) (*OrderDTO, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	previous := o.Status()
	if previous == status {
		result := toOrderDTO(o)
		return &result, nil
	}
	if err := o.Advance(status); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("order status advanced by workshop",
		zap.Int64("order_id", orderID),
		zap.String("from", previous.String()),
		zap.String("to", status.String()),
	)
	s.publishStatusChanged(ctx, o, previous, "workshop")

	result := toOrderDTO(o)
	return &result, nil
}

// DeleteOrder removes an order (admin). Its dates become free immediately.
func (s *BookingService) DeleteOrder(ctx context.Context, adminID, orderID int64) error {
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return err
	}
	s.metrics.BookingDeleted(string(booking.KindOrder))
	s.logger.Info("order deleted", zap.Int64("order_id", orderID), zap.Int64("admin_id", adminID))
	s.publisher.Publish(ctx, events.TopicBookingEvents, strconv.FormatInt(orderID, 10), events.OrderDeleted,
		events.BookingDeletedEvent{Kind: string(booking.KindOrder), ID: orderID, DeletedBy: adminID, OccurredAt: time.Now().UTC()})
	return nil
}

// DeleteReservation removes a reservation (admin).
func (s *BookingService) DeleteReservation(ctx context.Context, adminID, reservationID int64) error {
	if err := s.reservations.Delete(ctx, reservationID); err != nil {
		return err
	}
	s.metrics.BookingDeleted(string(booking.KindReservation))
	s.logger.Info("reservation deleted", zap.Int64("reservation_id", reservationID), zap.Int64("admin_id", adminID))
	s.publisher.Publish(ctx, events.TopicBookingEvents, strconv.FormatInt(reservationID, 10), events.ReservationDeleted,
		events.BookingDeletedEvent{Kind: string(booking.KindReservation), ID: reservationID, DeletedBy: adminID, OccurredAt: time.Now().UTC()})
	return nil
}

// GetOrderStats returns order counts by status (admin).
func (s *BookingService) GetOrderStats(ctx context.Context) (*OrderStatsDTO, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &OrderStatsDTO{ByStatus: make(map[string]int64)}
	for _, st := range orderDomain.AllStatuses() {
		stats.ByStatus[st.String()] = 0
	}
	for status, n := range counts {
		stats.ByStatus[status] = n
		stats.Total += n
	}
	return stats, nil
}

// ExportOrders renders every order into an .xlsx workbook (admin).
func (s *BookingService) ExportOrders(ctx context.Context) ([]byte, error) {
	listings, _, err := s.orders.ListAll(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	rows := make([]export.OrderRow, len(listings))
	for i, l := range listings {
		o := l.Order
		row := export.OrderRow{
			ID:        o.ID(),
			CreatedAt: o.CreatedAt(),
			UserEmail: l.UserEmail,
			Title:     o.Title(),
			Status:    o.Status().String(),
			Phone:     o.Phone(),
		}
		if l.CostumeTitle != nil {
			row.CostumeTitle = *l.CostumeTitle
		}
		if d := o.Dates(); d != nil {
			row.DateFrom = d.From.Format(booking.DateLayout)
			row.DateTo = d.To.Format(booking.DateLayout)
		}
		rows[i] = row
	}
	return export.OrdersWorkbook(rows)
}

// book runs the availability checks and persist under the costume's calendar
// lock so concurrent requests for one costume cannot both pass the check.
func (s *BookingService) book(
	ctx context.Context,
	kind booking.Kind,
	costumeID int64,
	dates booking.DateRange,
	persist func(ctx context.Context) error,
) error {
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.calendar.Lock(ctx, costumeID); err != nil {
			return err
		}
		c, err := s.findCostume(ctx, costumeID)
		if err != nil {
			return err
		}
		if !c.Available() {
			return booking.ErrResourceUnavailable
		}
		conflict, err := s.checker.HasConflict(ctx, costumeID, dates, nil)
		if err != nil {
			return err
		}
		if conflict {
			return booking.ErrBookingConflict
		}
		return persist(ctx)
	})
	if err != nil {
		s.metrics.BookingRejected(string(kind), rejectReason(err))
		if errors.Is(err, booking.ErrBookingConflict) {
			s.logger.Info("booking rejected, dates taken",
				zap.String("kind", string(kind)),
				zap.Int64("costume_id", costumeID),
				zap.String("dates", dates.String()),
			)
		}
		return err
	}
	s.metrics.BookingCreated(string(kind))
	return nil
}

func (s *BookingService) findCostume(ctx context.Context, id int64) (*costumeDomain.Costume, error) {
	c, err := s.costumes.FindByID(ctx, id)
	if err != nil {
		if code, ok := domain.CodeOf(err); ok && code == domain.CodeNotFound {
			return nil, booking.ErrResourceNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *BookingService) publishOrderCreated(ctx context.Context, o *orderDomain.Order) {
	evt := events.OrderCreatedEvent{
		OrderID:    o.ID(),
		UserID:     o.UserID(),
		CostumeID:  o.CostumeID(),
		Title:      o.Title(),
		Status:     o.Status().String(),
		OccurredAt: time.Now().UTC(),
	}
	if d := o.Dates(); d != nil {
		from, to := d.From.Format(booking.DateLayout), d.To.Format(booking.DateLayout)
		evt.DateFrom, evt.DateTo = &from, &to
	}
	key := strconv.FormatInt(o.ID(), 10)
	if o.CostumeID() != nil {
		key = costumeKey(*o.CostumeID())
	}
	s.publisher.Publish(ctx, events.TopicBookingEvents, key, events.OrderCreated, evt)
}

func (s *BookingService) publishStatusChanged(ctx context.Context, o *orderDomain.Order, previous orderDomain.Status, source string) {
	s.publisher.Publish(ctx, events.TopicBookingEvents, strconv.FormatInt(o.ID(), 10), events.OrderStatusChanged,
		events.OrderStatusChangedEvent{
			OrderID:    o.ID(),
			From:       previous.String(),
			To:         o.Status().String(),
			Source:     source,
			OccurredAt: time.Now().UTC(),
		})
}

func parseRange(fromDate, toDate string) (booking.DateRange, error) {
	from, err := booking.ParseDate(fromDate)
	if err != nil {
		return booking.DateRange{}, err
	}
	to, err := booking.ParseDate(toDate)
	if err != nil {
		return booking.DateRange{}, err
	}
	return booking.NewDateRange(from, to)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, booking.ErrBookingConflict):
		return "conflict"
	case errors.Is(err, booking.ErrResourceUnavailable):
		return "unavailable"
	case errors.Is(err, booking.ErrResourceNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func costumeKey(costumeID int64) string {
	return "costume-" + strconv.FormatInt(costumeID, 10)
}

func toOrderDTO(o *orderDomain.Order) OrderDTO {
	dto := OrderDTO{
		ID:        o.ID(),
		Title:     o.Title(),
		Status:    o.Status().String(),
		CreatedAt: o.CreatedAt(),
		CostumeID: o.CostumeID(),
	}
	if o.Phone() != "" {
		phone := o.Phone()
		dto.Phone = &phone
	}
	if d := o.Dates(); d != nil {
		from, to := d.From.Format(booking.DateLayout), d.To.Format(booking.DateLayout)
		dto.DateFrom, dto.DateTo = &from, &to
	}
	return dto
}

func toOrderAdminDTO(l orderDomain.Listing) OrderAdminDTO {
	return OrderAdminDTO{
		OrderDTO:     toOrderDTO(l.Order),
		UserID:       l.Order.UserID(),
		UserEmail:    l.UserEmail,
		CostumeTitle: l.CostumeTitle,
	}
}

func toReservationDTO(r *reservationDomain.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:        r.ID(),
		CostumeID: r.CostumeID(),
		DateFrom:  r.Dates().From.Format(booking.DateLayout),
		DateTo:    r.Dates().To.Format(booking.DateLayout),
		CreatedAt: r.CreatedAt(),
	}
}
