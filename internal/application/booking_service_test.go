package application

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/novy-stil/service-atelier/internal/domain/booking"
	"github.com/novy-stil/service-atelier/internal/metrics"
	"github.com/novy-stil/service-atelier/pkg/domain"
	"github.com/novy-stil/service-atelier/pkg/events"
)

type bookingFixture struct {
	db        *memDB
	publisher *recordingPublisher
	service   *BookingService
}

func newBookingFixture() *bookingFixture {
	db := newMemDB()
	pub := &recordingPublisher{}
	svc := NewBookingService(
		fakeCostumeRepo{db},
		fakeOrderRepo{db},
		fakeReservationRepo{db},
		fakeCalendar{db},
		&serialTx{},
		pub,
		metrics.New(prometheus.NewRegistry()),
		zap.NewNop(),
	)
	return &bookingFixture{db: db, publisher: pub, service: svc}
}

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64   { return &v }

func (f *bookingFixture) reserve(t *testing.T, costumeID int64, from, to string) (*ReservationDTO, error) {
	t.Helper()
	return f.service.CreateReservation(context.Background(), 1, CreateReservationRequest{
		CostumeID: costumeID, DateFrom: from, DateTo: to,
	})
}

func TestCreateReservation_BoundaryDayConflicts(t *testing.T) {
	f := newBookingFixture()
	costume := f.db.addCostume("Fox", true)

	_, err := f.reserve(t, costume, "2024-06-01", "2024-06-05")
	require.NoError(t, err)

	_, err = f.reserve(t, costume, "2024-06-05", "2024-06-10")
	assert.ErrorIs(t, err, booking.ErrBookingConflict)

	res, err := f.reserve(t, costume, "2024-06-06", "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-06", res.DateFrom)
}

func TestCreateBooking_ConflictsAcrossVariants(t *testing.T) {
	f := newBookingFixture()
	costume := f.db.addCostume("Fox", true)

	_, err := f.service.CreateOrder(context.Background(), 1, CreateOrderRequest{
		Title: "Rent for party", CostumeID: i64Ptr(costume),
		DateFrom: strPtr("2024-06-01"), DateTo: strPtr("2024-06-05"),
	})
	require.NoError(t, err)

	_, err = f.reserve(t, costume, "2024-06-03", "2024-06-03")
	assert.ErrorIs(t, err, booking.ErrBookingConflict, "reservation must see the order")

	_, err = f.reserve(t, costume, "2024-06-10", "2024-06-12")
	require.NoError(t, err)

	_, err = f.service.CreateOrder(context.Background(), 2, CreateOrderRequest{
		Title: "Another rent", CostumeID: i64Ptr(costume),
		DateFrom: strPtr("2024-06-12"), DateTo: strPtr("2024-06-20"),
	})
	assert.ErrorIs(t, err, booking.ErrBookingConflict, "order must see the reservation")
}

func TestCreateBooking_ErrorOrder(t *testing.T) {
	f := newBookingFixture()
	unavailable := f.db.addCostume("Old", false)

	_, err := f.reserve(t, 999, "2024-06-05", "2024-06-01")
	assert.ErrorIs(t, err, booking.ErrInvalidDateRange, "range is validated before the costume lookup")

	_, err = f.reserve(t, 999, "2024-06-01", "2024-06-05")
	assert.ErrorIs(t, err, booking.ErrResourceNotFound)

	_, err = f.reserve(t, unavailable, "2024-06-01", "2024-06-05")
	assert.ErrorIs(t, err, booking.ErrResourceUnavailable)

	_, err = f.reserve(t, unavailable, "bad", "2024-06-05")
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeValidation, code)
}

func TestListConflicts_WindowAndIdempotence(t *testing.T) {
	f := newBookingFixture()
	costume := f.db.addCostume("Fox", true)
	other := f.db.addCostume("Bear", true)
	ctx := context.Background()

	_, err := f.reserve(t, costume, "2024-06-01", "2024-06-05")
	require.NoError(t, err)
	_, err = f.service.CreateOrder(ctx, 1, CreateOrderRequest{
		Title: "Rent", CostumeID: i64Ptr(costume),
		DateFrom: strPtr("2024-06-10"), DateTo: strPtr("2024-06-12"),
	})
	require.NoError(t, err)
	_, err = f.reserve(t, other, "2024-06-01", "2024-06-30")
	require.NoError(t, err)

	window, err := f.service.ListConflicts(ctx, costume, "2024-06-03", "2024-06-04")
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "reservation", window[0].Type)
	assert.Equal(t, "2024-06-01", window[0].DateFrom)
	assert.Equal(t, "2024-06-05", window[0].DateTo)

	all, err := f.service.ListConflicts(ctx, costume, "", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "reservation", all[0].Type)
	assert.Equal(t, "order", all[1].Type)

	again, err := f.service.ListConflicts(ctx, costume, "", "")
	require.NoError(t, err)
	assert.Equal(t, all, again)

	halfWindow, err := f.service.ListConflicts(ctx, costume, "2024-06-03", "")
	require.NoError(t, err)
	assert.Len(t, halfWindow, 2, "a single bound does not narrow the result")

	_, err = f.service.ListConflicts(ctx, costume, "2024-06-04", "2024-06-03")
	assert.ErrorIs(t, err, booking.ErrInvalidDateRange)
}

func TestDeleteThenRebook(t *testing.T) {
	f := newBookingFixture()
	costume := f.db.addCostume("Fox", true)
	ctx := context.Background()

	res, err := f.reserve(t, costume, "2024-06-01", "2024-06-05")
	require.NoError(t, err)
	_, err = f.reserve(t, costume, "2024-06-02", "2024-06-03")
	require.ErrorIs(t, err, booking.ErrBookingConflict)

	require.NoError(t, f.service.DeleteReservation(ctx, 99, res.ID))
	assert.ErrorIs(t, f.service.DeleteReservation(ctx, 99, res.ID), booking.ErrNotFound)

	_, err = f.reserve(t, costume, "2024-06-02", "2024-06-03")
	require.NoError(t, err)

	assert.Contains(t, f.publisher.types(), events.ReservationDeleted)
}

func TestDeleteOrder_FreesDates(t *testing.T) {
	f := newBookingFixture()
	costume := f.db.addCostume("Fox", true)
	ctx := context.Background()

	o, err := f.service.CreateOrder(ctx, 1, CreateOrderRequest{
		Title: "Rent", CostumeID: i64Ptr(costume),
		DateFrom: strPtr("2024-06-01"), DateTo: strPtr("2024-06-05"),
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteOrder(ctx, 99, o.ID))
	assert.ErrorIs(t, f.service.DeleteOrder(ctx, 99, o.ID), booking.ErrNotFound)

	_, err = f.reserve(t, costume, "2024-06-01", "2024-06-05")
	assert.NoError(t, err)
}

func TestCreateOrder_Variants(t *testing.T) {
	f := newBookingFixture()
	unavailable := f.db.addCostume("Old", false)
	ctx := context.Background()

	plain, err := f.service.CreateOrder(ctx, 1, CreateOrderRequest{Title: "Hem trousers", Phone: "+7 900"})
	require.NoError(t, err)
	assert.Equal(t, "new", plain.Status)
	require.NotNil(t, plain.Phone)
	assert.Nil(t, plain.CostumeID)

	withCostume, err := f.service.CreateOrder(ctx, 1, CreateOrderRequest{Title: "Fit", CostumeID: i64Ptr(unavailable)})
	require.NoError(t, err, "a costume without dates only needs to exist")
	assert.Equal(t, unavailable, *withCostume.CostumeID)

	_, err = f.service.CreateOrder(ctx, 1, CreateOrderRequest{Title: "Fit", CostumeID: i64Ptr(12345)})
	assert.ErrorIs(t, err, booking.ErrResourceNotFound)

	_, err = f.service.CreateOrder(ctx, 1, CreateOrderRequest{
		Title: "Half", CostumeID: i64Ptr(unavailable), DateFrom: strPtr("2024-06-01"),
	})
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeValidation, code)

	_, err = f.service.CreateOrder(ctx, 1, CreateOrderRequest{Title: "Bad", Status: "cancelled"})
	code, _ = domain.CodeOf(err)
	assert.Equal(t, domain.CodeValidation, code)

	legacy, err := f.service.CreateOrder(ctx, 1, CreateOrderRequest{Title: "Legacy", Status: "завершена"})
	require.NoError(t, err)
	assert.Equal(t, "completed", legacy.Status)

	assert.Equal(t, []string{events.OrderCreated, events.OrderCreated, events.OrderCreated}, f.publisher.types())
}

func TestCreateReservation_ConcurrentRequestsOneWins(t *testing.T) {
	f := newBookingFixture()
	costume := f.db.addCostume("Fox", true)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CreateReservation(context.Background(), 1, CreateReservationRequest{
				CostumeID: costume, DateFrom: "2024-07-01", DateTo: "2024-07-03",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, booking.ErrBookingConflict)
	}
	assert.Equal(t, 1, succeeded)
}

func TestNoOverlapInvariant(t *testing.T) {
	f := newBookingFixture()
	costume := f.db.addCostume("Fox", true)
	ctx := context.Background()

	requests := [][2]string{
		{"2024-06-01", "2024-06-05"}, {"2024-06-03", "2024-06-08"}, {"2024-06-06", "2024-06-06"},
		{"2024-06-06", "2024-06-09"}, {"2024-05-25", "2024-06-01"}, {"2024-06-07", "2024-06-07"},
		{"2024-06-10", "2024-06-15"}, {"2024-05-20", "2024-05-31"},
	}
	for i, r := range requests {
		if i%2 == 0 {
			_, _ = f.reserve(t, costume, r[0], r[1])
			continue
		}
		_, _ = f.service.CreateOrder(ctx, 1, CreateOrderRequest{
			Title: "Rent", CostumeID: i64Ptr(costume), DateFrom: strPtr(r[0]), DateTo: strPtr(r[1]),
		})
	}

	entries, err := fakeCalendar{f.db}.FindOverlapping(ctx, costume, nil)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			assert.False(t, entries[i].Range.Overlaps(entries[j].Range),
				"%s overlaps %s", entries[i].Range, entries[j].Range)
		}
	}
}

func TestOrderStatus_AdminAndWorkshop(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	o, err := f.service.CreateOrder(ctx, 1, CreateOrderRequest{Title: "Sew a dress"})
	require.NoError(t, err)

	updated, err := f.service.UpdateOrderStatus(ctx, o.ID, UpdateOrderStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)

	_, err = f.service.AdvanceOrderStatus(ctx, o.ID, "in_progress")
	code, _ := domain.CodeOf(err)
	assert.Equal(t, domain.CodeInvalidState, code)

	same, err := f.service.AdvanceOrderStatus(ctx, o.ID, "completed")
	require.NoError(t, err, "re-applying the current status is idempotent")
	assert.Equal(t, "completed", same.Status)

	_, err = f.service.UpdateOrderStatus(ctx, o.ID, UpdateOrderStatusRequest{Status: "lost"})
	code, _ = domain.CodeOf(err)
	assert.Equal(t, domain.CodeValidation, code)

	_, err = f.service.UpdateOrderStatus(ctx, 4242, UpdateOrderStatusRequest{Status: "new"})
	code, _ = domain.CodeOf(err)
	assert.Equal(t, domain.CodeNotFound, code)

	stats, err := f.service.GetOrderStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus["completed"])
	assert.Equal(t, int64(0), stats.ByStatus["new"])
}

func TestAdminListsAndExport(t *testing.T) {
	f := newBookingFixture()
	costume := f.db.addCostume("Fox", true)
	ctx := context.Background()
	f.db.emails[1] = "anna@example.com"

	_, err := f.service.CreateOrder(ctx, 1, CreateOrderRequest{
		Title: "Rent", CostumeID: i64Ptr(costume), DateFrom: strPtr("2024-06-01"), DateTo: strPtr("2024-06-02"),
	})
	require.NoError(t, err)
	_, err = f.service.CreateOrder(ctx, 1, CreateOrderRequest{Title: "Hem"})
	require.NoError(t, err)
	_, err = f.reserve(t, costume, "2024-07-01", "2024-07-02")
	require.NoError(t, err)

	page, err := f.service.ListAllOrders(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	orders := page.Items
	assert.Equal(t, "Hem", orders[0].Title, "newest first")
	assert.Equal(t, "anna@example.com", orders[1].UserEmail)
	require.NotNil(t, orders[1].CostumeTitle)
	assert.Equal(t, "Fox", *orders[1].CostumeTitle)

	reservations, err := f.service.ListAllReservations(ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, reservations.Items, 1)
	assert.Equal(t, "Fox", reservations.Items[0].CostumeTitle)

	data, err := f.service.ExportOrders(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	mine, err := f.service.GetMyReservations(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
