package application

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/novy-stil/service-atelier/internal/domain/booking"
	costumeDomain "github.com/novy-stil/service-atelier/internal/domain/costume"
	orderDomain "github.com/novy-stil/service-atelier/internal/domain/order"
	reservationDomain "github.com/novy-stil/service-atelier/internal/domain/reservation"
	userDomain "github.com/novy-stil/service-atelier/internal/domain/user"
	"github.com/novy-stil/service-atelier/pkg/domain"
)

// memDB backs all in-memory repositories so the calendar sees both tables.
type memDB struct {
	mu           sync.Mutex
	nextID       int64
	costumes     map[int64]*costumeDomain.Costume
	orders       []*orderDomain.Order
	reservations []*reservationDomain.Reservation
	users        []*userDomain.User
	profiles     map[int64]*userDomain.Profile
	emails       map[int64]string
}

func newMemDB() *memDB {
	return &memDB{
		costumes: make(map[int64]*costumeDomain.Costume),
		profiles: make(map[int64]*userDomain.Profile),
		emails:   make(map[int64]string),
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) addCostume(title string, available bool) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.id()
	db.costumes[id] = costumeDomain.ReconstructCostume(id, title, "", 1000, available, title+".png")
	return id
}

type fakeCostumeRepo struct{ db *memDB }

func (r fakeCostumeRepo) FindByID(_ context.Context, id int64) (*costumeDomain.Costume, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.costumes[id]
	if !ok {
		return nil, domain.NewNotFoundError("Costume", strconv.FormatInt(id, 10))
	}
	copied := *c
	return &copied, nil
}

func (r fakeCostumeRepo) FindAll(context.Context) ([]*costumeDomain.Costume, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ids := make([]int64, 0, len(r.db.costumes))
	for id := range r.db.costumes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*costumeDomain.Costume, len(ids))
	for i, id := range ids {
		out[i] = r.db.costumes[id]
	}
	return out, nil
}

func (r fakeCostumeRepo) Save(_ context.Context, c *costumeDomain.Costume) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c.AssignID(r.db.id())
	r.db.costumes[c.ID()] = c
	return nil
}

func (r fakeCostumeRepo) Update(_ context.Context, c *costumeDomain.Costume) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.costumes[c.ID()]; !ok {
		return domain.NewNotFoundError("Costume", "")
	}
	r.db.costumes[c.ID()] = c
	return nil
}

func (r fakeCostumeRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.costumes[id]; !ok {
		return domain.NewNotFoundError("Costume", "")
	}
	delete(r.db.costumes, id)
	kept := r.db.reservations[:0]
	for _, res := range r.db.reservations {
		if res.CostumeID() != id {
			kept = append(kept, res)
		}
	}
	r.db.reservations = kept
	for i, o := range r.db.orders {
		if cid := o.CostumeID(); cid != nil && *cid == id {
			r.db.orders[i] = orderDomain.ReconstructOrder(
				o.ID(), o.UserID(), nil, o.Title(), o.Phone(), o.Status(), o.Dates(), o.CreatedAt(),
			)
		}
	}
	return nil
}

type fakeOrderRepo struct{ db *memDB }

func (r fakeOrderRepo) FindByID(_ context.Context, id int64) (*orderDomain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.orders {
		if o.ID() == id {
			return o, nil
		}
	}
	return nil, domain.NewNotFoundError("Order", strconv.FormatInt(id, 10))
}

func (r fakeOrderRepo) FindByUserID(_ context.Context, userID int64) ([]*orderDomain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*orderDomain.Order
	for i := len(r.db.orders) - 1; i >= 0; i-- {
		if r.db.orders[i].UserID() == userID {
			out = append(out, r.db.orders[i])
		}
	}
	return out, nil
}

func (r fakeOrderRepo) ListAll(_ context.Context, page, limit int) ([]orderDomain.Listing, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []orderDomain.Listing
	for i := len(r.db.orders) - 1; i >= 0; i-- {
		o := r.db.orders[i]
		l := orderDomain.Listing{Order: o, UserEmail: r.db.emails[o.UserID()]}
		if o.CostumeID() != nil {
			if c, ok := r.db.costumes[*o.CostumeID()]; ok {
				title := c.Title()
				l.CostumeTitle = &title
			}
		}
		out = append(out, l)
	}
	total := int64(len(out))
	if limit > 0 {
		start := (page - 1) * limit
		if start > len(out) {
			start = len(out)
		}
		end := start + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r fakeOrderRepo) CountByStatus(context.Context) (map[string]int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	counts := make(map[string]int64)
	for _, o := range r.db.orders {
		counts[o.Status().String()]++
	}
	return counts, nil
}

func (r fakeOrderRepo) Save(_ context.Context, o *orderDomain.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o.AssignID(r.db.id(), time.Now().UTC())
	r.db.orders = append(r.db.orders, o)
	return nil
}

func (r fakeOrderRepo) UpdateStatus(context.Context, *orderDomain.Order) error { return nil }

func (r fakeOrderRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, o := range r.db.orders {
		if o.ID() == id {
			r.db.orders = append(r.db.orders[:i], r.db.orders[i+1:]...)
			return nil
		}
	}
	return booking.ErrNotFound
}

type fakeReservationRepo struct{ db *memDB }

func (r fakeReservationRepo) FindByUserID(_ context.Context, userID int64) ([]*reservationDomain.Reservation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*reservationDomain.Reservation
	for _, res := range r.db.reservations {
		if res.UserID() == userID {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Dates().From.After(out[j].Dates().From) })
	return out, nil
}

func (r fakeReservationRepo) ListAll(_ context.Context, _, _ int) ([]reservationDomain.Listing, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]reservationDomain.Listing, 0, len(r.db.reservations))
	for _, res := range r.db.reservations {
		out = append(out, reservationDomain.Listing{
			Reservation:  res,
			UserEmail:    r.db.emails[res.UserID()],
			CostumeTitle: r.db.costumes[res.CostumeID()].Title(),
		})
	}
	return out, int64(len(out)), nil
}

func (r fakeReservationRepo) Save(_ context.Context, res *reservationDomain.Reservation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	res.AssignID(r.db.id(), time.Now().UTC())
	r.db.reservations = append(r.db.reservations, res)
	return nil
}

func (r fakeReservationRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, res := range r.db.reservations {
		if res.ID() == id {
			r.db.reservations = append(r.db.reservations[:i], r.db.reservations[i+1:]...)
			return nil
		}
	}
	return booking.ErrNotFound
}

type fakeCalendar struct{ db *memDB }

func (c fakeCalendar) FindOverlapping(_ context.Context, costumeID int64, window *booking.DateRange) ([]booking.Entry, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	var out []booking.Entry
	for _, res := range c.db.reservations {
		if res.CostumeID() == costumeID && (window == nil || res.Dates().Overlaps(*window)) {
			out = append(out, booking.Entry{ID: res.ID(), Kind: booking.KindReservation, CostumeID: costumeID, Range: res.Dates()})
		}
	}
	for _, o := range c.db.orders {
		if !o.IsBooking() || *o.CostumeID() != costumeID {
			continue
		}
		if window == nil || o.Dates().Overlaps(*window) {
			out = append(out, booking.Entry{ID: o.ID(), Kind: booking.KindOrder, CostumeID: costumeID, Range: *o.Dates()})
		}
	}
	return out, nil
}

func (c fakeCalendar) Lock(context.Context, int64) error { return nil }

// serialTx runs transactions one at a time, like the per-costume advisory lock.
type serialTx struct{ mu sync.Mutex }

func (t *serialTx) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

type publishedEvent struct {
	Topic, Key, Type string
	Data             interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key, eventType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Type: eventType, Data: data})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fakeUserRepo struct{ db *memDB }

func (r fakeUserRepo) FindByID(_ context.Context, id int64) (*userDomain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.ID() == id {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("User", strconv.FormatInt(id, 10))
}

func (r fakeUserRepo) FindByEmail(_ context.Context, email string) (*userDomain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, domain.NewNotFoundError("User", "")
}

func (r fakeUserRepo) Save(_ context.Context, u *userDomain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email() == u.Email() {
			return domain.NewConflictError("a user with this email already exists")
		}
	}
	u.AssignID(r.db.id())
	r.db.users = append(r.db.users, u)
	r.db.emails[u.ID()] = u.Email()
	return nil
}

func (r fakeUserRepo) Update(context.Context, *userDomain.User) error { return nil }

type fakeProfileRepo struct{ db *memDB }

func (r fakeProfileRepo) FindByUserID(_ context.Context, userID int64) (*userDomain.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.profiles[userID], nil
}

func (r fakeProfileRepo) Upsert(_ context.Context, p *userDomain.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p.ID() == 0 {
		p.AssignID(r.db.id())
	}
	r.db.profiles[p.UserID()] = p
	return nil
}

type memImageStore struct {
	files   map[string]string
	saveErr error
}

func newMemImageStore() *memImageStore {
	return &memImageStore{files: make(map[string]string)}
}

func (s *memImageStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.files[name] = string(data)
	return name, nil
}

func (s *memImageStore) Delete(_ context.Context, key string) error {
	delete(s.files, key)
	return nil
}

func (s *memImageStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return "/uploads/" + key
}

type memAnswerCache struct {
	answers map[string]string
	getErr  error
}

func (c *memAnswerCache) Get(_ context.Context, q string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	a, ok := c.answers[q]
	return a, ok, nil
}

func (c *memAnswerCache) Set(_ context.Context, q, a string) error {
	c.answers[q] = a
	return nil
}

type stubGenerator struct {
	answer string
	err    error
	calls  int
	prompt string
}

func (g *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompt = prompt
	return g.answer, g.err
}

var errBoom = errors.New("boom")
