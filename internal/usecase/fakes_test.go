package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// memStore is an in-memory stand-in for Postgres. Entities are copied in and
// out so services only see their changes after an explicit Create/Update.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]entity.User
	sessions      map[string]entity.Session
	events        map[uuid.UUID]entity.Event
	orders        map[uuid.UUID]entity.Order
	tickets       map[uuid.UUID]entity.Ticket
	confirmations map[uuid.UUID]entity.PaymentConfirmation // key: order id
	methods       []entity.PaymentMethod
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]entity.User{},
		sessions:      map[string]entity.Session{},
		events:        map[uuid.UUID]entity.Event{},
		orders:        map[uuid.UUID]entity.Order{},
		tickets:       map[uuid.UUID]entity.Ticket{},
		confirmations: map[uuid.UUID]entity.PaymentConfirmation{},
	}
}

func (st *memStore) snapshot() *memStore {
	st.mu.Lock()
	defer st.mu.Unlock()

	cp := newMemStore()
	for k, v := range st.users {
		cp.users[k] = v
	}
	for k, v := range st.sessions {
		cp.sessions[k] = v
	}
	for k, v := range st.events {
		cp.events[k] = v
	}
	for k, v := range st.orders {
		cp.orders[k] = v
	}
	for k, v := range st.tickets {
		cp.tickets[k] = v
	}
	for k, v := range st.confirmations {
		cp.confirmations[k] = v
	}
	cp.methods = append(cp.methods, st.methods...)
	return cp
}

func (st *memStore) restore(from *memStore) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.users = from.users
	st.sessions = from.sessions
	st.events = from.events
	st.orders = from.orders
	st.tickets = from.tickets
	st.confirmations = from.confirmations
	st.methods = from.methods
}

// ==================== REPOSITORIES ====================

type memUserRepo struct{ st *memStore }

func (r memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.users[u.ID] = *u
	return nil
}

func (r memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if u, ok := r.st.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r memUserRepo) find(match func(entity.User) bool) *entity.User {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.users {
		if match(u) {
			return &u
		}
	}
	return nil
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email == email }), nil
}

func (r memUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Username == username }), nil
}

func (r memUserRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var all []*entity.User
	for _, u := range r.st.users {
		u := u
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return page(all, limit, offset), nil
}

func (r memUserRepo) CountAll(_ context.Context) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return int64(len(r.st.users)), nil
}

type memSessionRepo struct{ st *memStore }

func (r memSessionRepo) Create(_ context.Context, s *entity.Session) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.sessions[s.Token.String()] = *s
	return nil
}

func (r memSessionRepo) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	s, ok := r.st.sessions[token]
	if !ok || !s.Active(time.Now()) {
		return nil, nil
	}
	return &s, nil
}

func (r memSessionRepo) Revoke(_ context.Context, token string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	s, ok := r.st.sessions[token]
	if !ok || s.RevokedAt != nil {
		return fmt.Errorf("session not found or already revoked")
	}
	now := time.Now()
	s.RevokedAt = &now
	r.st.sessions[token] = s
	return nil
}

type memEventRepo struct{ st *memStore }

func (r memEventRepo) Create(_ context.Context, e *entity.Event) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.events[e.ID] = *e
	return nil
}

func (r memEventRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Event, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if e, ok := r.st.events[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (r memEventRepo) active() []*entity.Event {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*entity.Event
	for _, e := range r.st.events {
		if e.IsActive {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r memEventRepo) FindActive(_ context.Context, limit, offset int) ([]*entity.Event, error) {
	return page(r.active(), limit, offset), nil
}

func (r memEventRepo) CountActive(_ context.Context) (int64, error) {
	return int64(len(r.active())), nil
}

func (r memEventRepo) Update(_ context.Context, e *entity.Event) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.events[e.ID]; !ok {
		return fmt.Errorf("event %s not found", e.ID)
	}
	r.st.events[e.ID] = *e
	return nil
}

type memOrderRepo struct{ st *memStore }

func (r memOrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.orders {
		if existing.OrderCode == o.OrderCode {
			return fmt.Errorf("duplicate order_code %s", o.OrderCode)
		}
	}
	r.st.orders[o.ID] = *o
	return nil
}

func (r memOrderRepo) Update(_ context.Context, o *entity.Order) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	existing, ok := r.st.orders[o.ID]
	if !ok {
		return fmt.Errorf("order %s not found", o.ID)
	}
	updated := *o
	updated.OrderCode = existing.OrderCode
	updated.CreatedAt = existing.CreatedAt
	r.st.orders[o.ID] = updated
	return nil
}

func (r memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if o, ok := r.st.orders[id]; ok {
		return &o, nil
	}
	return nil, nil
}

func (r memOrderRepo) FindByCode(_ context.Context, code string) (*entity.Order, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, o := range r.st.orders {
		if o.OrderCode == code {
			return &o, nil
		}
	}
	return nil, nil
}

func (r memOrderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.FindByID(ctx, id)
}

func (r memOrderRepo) FindByCodeForUpdate(ctx context.Context, code string) (*entity.Order, error) {
	return r.FindByCode(ctx, code)
}

func (r memOrderRepo) filter(match func(entity.Order) bool) []*entity.Order {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.st.orders {
		if match(o) {
			o := o
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Order, error) {
	return page(r.filter(func(o entity.Order) bool { return o.UserID == userID }), limit, offset), nil
}

func (r memOrderRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(o entity.Order) bool { return o.UserID == userID }))), nil
}

func (r memOrderRepo) FindByStatus(_ context.Context, status entity.OrderStatus, limit, offset int) ([]*entity.Order, error) {
	return page(r.filter(func(o entity.Order) bool { return o.Status == status }), limit, offset), nil
}

func (r memOrderRepo) CountByStatus(_ context.Context, status entity.OrderStatus) (int64, error) {
	return int64(len(r.filter(func(o entity.Order) bool { return o.Status == status }))), nil
}

type memTicketRepo struct{ st *memStore }

func (r memTicketRepo) Create(_ context.Context, t *entity.Ticket) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.tickets {
		if existing.TicketCode == t.TicketCode {
			return fmt.Errorf("duplicate ticket_code %s", t.TicketCode)
		}
	}
	r.st.tickets[t.ID] = *t
	return nil
}

func (r memTicketRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Ticket, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if t, ok := r.st.tickets[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (r memTicketRepo) filter(match func(entity.Ticket) bool) []*entity.Ticket {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*entity.Ticket
	for _, t := range r.st.tickets {
		if match(t) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketCode < out[j].TicketCode })
	return out
}

func (r memTicketRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]*entity.Ticket, error) {
	return r.filter(func(t entity.Ticket) bool { return t.OrderID == orderID }), nil
}

func (r memTicketRepo) CountByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	tickets, _ := r.FindByOrderID(ctx, orderID)
	return int64(len(tickets)), nil
}

func (r memTicketRepo) FindByCodeForUpdate(_ context.Context, code string) (*entity.Ticket, error) {
	found := r.filter(func(t entity.Ticket) bool { return t.TicketCode == code })
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r memTicketRepo) ownedBy(userID uuid.UUID) []*entity.Ticket {
	r.st.mu.Lock()
	owned := map[uuid.UUID]bool{}
	for id, o := range r.st.orders {
		owned[id] = o.UserID == userID
	}
	r.st.mu.Unlock()
	return r.filter(func(t entity.Ticket) bool { return owned[t.OrderID] })
}

func (r memTicketRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Ticket, error) {
	return page(r.ownedBy(userID), limit, offset), nil
}

func (r memTicketRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(r.ownedBy(userID))), nil
}

func (r memTicketRepo) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.tickets[id]
	if !ok || t.IsUsed {
		return fmt.Errorf("%w: ticket %s has already been used", utils.ErrConflict, id)
	}
	t.IsUsed = true
	t.UsedAt = &usedAt
	r.st.tickets[id] = t
	return nil
}

type memConfirmationRepo struct{ st *memStore }

func (r memConfirmationRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) (*entity.PaymentConfirmation, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if pc, ok := r.st.confirmations[orderID]; ok {
		return &pc, nil
	}
	return nil, nil
}

func (r memConfirmationRepo) GetOrCreate(ctx context.Context, orderID uuid.UUID, now time.Time) (*entity.PaymentConfirmation, error) {
	r.st.mu.Lock()
	if _, ok := r.st.confirmations[orderID]; !ok {
		r.st.confirmations[orderID] = entity.PaymentConfirmation{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			OrderID:      orderID,
		}
	}
	r.st.mu.Unlock()
	return r.FindByOrderID(ctx, orderID)
}

func (r memConfirmationRepo) Update(_ context.Context, pc *entity.PaymentConfirmation) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.confirmations[pc.OrderID]; !ok {
		return fmt.Errorf("payment confirmation %s not found", pc.ID)
	}
	r.st.confirmations[pc.OrderID] = *pc
	return nil
}

type memPaymentMethodRepo struct{ st *memStore }

func (r memPaymentMethodRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.PaymentMethod, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, pm := range r.st.methods {
		if pm.ID == id {
			pm := pm
			return &pm, nil
		}
	}
	return nil, nil
}

func (r memPaymentMethodRepo) FindAllActive(_ context.Context) ([]*entity.PaymentMethod, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*entity.PaymentMethod
	for _, pm := range r.st.methods {
		if pm.IsActive {
			pm := pm
			out = append(out, &pm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// memTx rolls the whole store back when fn fails
type memTx struct {
	st   *memStore
	repo *repository.Repository
}

func (t *memTx) WithinTx(_ context.Context, fn func(repo *repository.Repository) error) error {
	before := t.st.snapshot()
	if err := fn(t.repo); err != nil {
		t.st.restore(before)
		return err
	}
	return nil
}

func newMemRepository(st *memStore) *repository.Repository {
	repo := &repository.Repository{
		User:                memUserRepo{st},
		Session:             memSessionRepo{st},
		Event:               memEventRepo{st},
		Order:               memOrderRepo{st},
		Ticket:              memTicketRepo{st},
		PaymentConfirmation: memConfirmationRepo{st},
		PaymentMethod:       memPaymentMethodRepo{st},
	}
	repo.Tx = &memTx{st: st, repo: repo}
	return repo
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ==================== INFRA FAKES ====================

type fakeEncoder struct {
	mu       sync.Mutex
	calls    int
	failFrom int // gagal mulai panggilan ke-n, 0 = tidak pernah
}

func (e *fakeEncoder) Encode(payload string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failFrom > 0 && e.calls >= e.failFrom {
		return nil, errors.New("qr encoder unavailable")
	}
	return []byte("png:" + payload), nil
}

type fakeMedia struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{files: map[string][]byte{}}
}

func (m *fakeMedia) Save(_ context.Context, dir, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rel := dir + "/" + name
	m.files[rel] = data
	return rel, nil
}

func (m *fakeMedia) Remove(_ context.Context, rel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, rel)
	return nil
}

func (m *fakeMedia) URL(rel string) string {
	return "http://media.test/" + rel
}

func (m *fakeMedia) count(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.files {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, code string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[code]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) Set(_ context.Context, code string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[code] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, code)
	return nil
}

type published struct {
	EventType     string
	CorrelationID string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, eventType, correlationID string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{EventType: eventType, CorrelationID: correlationID})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

// ==================== FIXTURE ====================

type fixture struct {
	st        *memStore
	repo      *repository.Repository
	encoder   *fakeEncoder
	media     *fakeMedia
	cache     *memCache
	publisher *recordingPublisher
	svc       *Service

	admin    Actor
	buyer    Actor
	stranger Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := newMemStore()
	f := &fixture{
		st:        st,
		repo:      newMemRepository(st),
		encoder:   &fakeEncoder{},
		media:     newFakeMedia(),
		cache:     newMemCache(),
		publisher: &recordingPublisher{},
		admin:     Actor{UserID: uuid.New(), IsAdmin: true},
		buyer:     Actor{UserID: uuid.New()},
		stranger:  Actor{UserID: uuid.New()},
	}

	for _, a := range []struct {
		actor Actor
		name  string
		role  entity.UserRole
	}{
		{f.admin, "admin", entity.RoleAdmin},
		{f.buyer, "buyer", entity.RoleCustomer},
		{f.stranger, "stranger", entity.RoleCustomer},
	} {
		st.users[a.actor.UserID] = entity.User{
			Base:     entity.Base{ID: a.actor.UserID, CreatedAt: time.Now()},
			Username: a.name,
			Email:    a.name + "@example.com",
			Role:     a.role,
			IsActive: true,
		}
	}

	f.svc = NewService(f.repo, &utils.Config{}, zaptest.NewLogger(t), Dependencies{
		Cache:     f.cache,
		Publisher: f.publisher,
		QR:        f.encoder,
		Media:     f.media,
	})
	return f
}

func (f *fixture) addEvent(price string, active bool) *entity.Event {
	e := entity.Event{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Title:        "Jazz Night",
		Date:         time.Now().Add(72 * time.Hour),
		Price:        decimal.RequireFromString(price),
		Location:     "Accra",
		OrganizerID:  f.admin.UserID,
		IsActive:     active,
	}
	f.st.events[e.ID] = e
	return &e
}

func (f *fixture) storedOrder(t *testing.T, id string) entity.Order {
	t.Helper()
	o, ok := f.st.orders[uuid.MustParse(id)]
	if !ok {
		t.Fatalf("order %s not stored", id)
	}
	return o
}

func (f *fixture) ticketsOf(orderID string) []*entity.Ticket {
	tickets, _ := memTicketRepo{f.st}.FindByOrderID(context.Background(), uuid.MustParse(orderID))
	return tickets
}

func zaptestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}
