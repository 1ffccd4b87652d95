package usecase_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"littlelemon/internal/domain/model"
	repo "littlelemon/internal/repository"
	"littlelemon/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// =====================
// Clock
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2024, 5, 17, 12, 30, 0, 0, time.UTC)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertKind(t *testing.T, err error, want usecase.ErrorKind) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, want, usecase.KindOf(err), "err=%v", err)
	}
}

// =====================
// Catalog
// =====================

type memMenu struct {
	mu    sync.Mutex
	seq   int64
	items map[int64]model.MenuItem
}

var _ repo.MenuItemRepository = (*memMenu)(nil)

func newMemMenu(items ...model.MenuItem) *memMenu {
	m := &memMenu{items: map[int64]model.MenuItem{}}
	for _, it := range items {
		m.items[it.ID] = it
		if it.ID > m.seq {
			m.seq = it.ID
		}
	}
	return m
}

func (m *memMenu) List(ctx context.Context, q repo.MenuItemQuery) ([]model.MenuItem, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.MenuItem
	for _, it := range m.items {
		if q.Search != "" && !strings.Contains(strings.ToLower(it.Title), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memMenu) FindByID(ctx context.Context, id int64) (model.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return model.MenuItem{}, repo.ErrNotFound
	}
	return it, nil
}

func (m *memMenu) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64]model.MenuItem{}
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}

func (m *memMenu) Create(ctx context.Context, it model.MenuItem) (model.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	it.ID = m.seq
	m.items[it.ID] = it
	return it, nil
}

func (m *memMenu) Update(ctx context.Context, it model.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[it.ID]; !ok {
		return repo.ErrNotFound
	}
	m.items[it.ID] = it
	return nil
}

func (m *memMenu) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memCategories struct {
	mu  sync.Mutex
	all []model.Category
}

func (c *memCategories) List(ctx context.Context) ([]model.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Category{}, c.all...), nil
}

func (c *memCategories) FindByID(ctx context.Context, id int64) (model.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, x := range c.all {
		if x.ID == id {
			return x, nil
		}
	}
	return model.Category{}, repo.ErrNotFound
}

func (c *memCategories) Create(ctx context.Context, cat model.Category) (model.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, x := range c.all {
		if x.Slug == cat.Slug {
			return model.Category{}, repo.ErrDuplicate
		}
	}
	cat.ID = int64(len(c.all) + 1)
	c.all = append(c.all, cat)
	return cat, nil
}

// =====================
// Identity (users + roles)
// =====================

type memIdentity struct {
	mu    sync.Mutex
	users map[int64]model.User
	roles map[int64]map[model.Role]bool
}

var (
	_ repo.UserRepository = (*memIdentity)(nil)
	_ repo.RoleRepository = (*memIdentity)(nil)
)

func newMemIdentity(users ...model.User) *memIdentity {
	id := &memIdentity{users: map[int64]model.User{}, roles: map[int64]map[model.Role]bool{}}
	for _, u := range users {
		id.users[u.ID] = u
	}
	return id
}

func (m *memIdentity) grant(userID int64, role model.Role) {
	_ = m.AddRole(context.Background(), userID, role)
}

func (m *memIdentity) Create(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Username == u.Username {
			return repo.ErrDuplicate
		}
	}
	u.ID = int64(len(m.users) + 1)
	m.users[u.ID] = *u
	return nil
}

func (m *memIdentity) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	return &u, nil
}

func (m *memIdentity) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (m *memIdentity) IncrementTokenVersion(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repo.ErrUserNotFound
	}
	u.TokenVersion++
	m.users[userID] = u
	return nil
}

func (m *memIdentity) ListRoles(ctx context.Context, userID int64) ([]model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Role
	for r := range m.roles[userID] {
		out = append(out, r)
	}
	return out, nil
}

func (m *memIdentity) HasRole(ctx context.Context, userID int64, role model.Role) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles[userID][role], nil
}

func (m *memIdentity) AddRole(ctx context.Context, userID int64, role model.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roles[userID] == nil {
		m.roles[userID] = map[model.Role]bool{}
	}
	m.roles[userID][role] = true
	return nil
}

func (m *memIdentity) RemoveRole(ctx context.Context, userID int64, role model.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.roles[userID], role)
	return nil
}

func (m *memIdentity) ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.User{}
	for id, rs := range m.roles {
		if rs[role] {
			out = append(out, m.users[id])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =====================
// Orders / cart store with transactions
// =====================

// memStoreはWithinTxを1本ずつ実行し、fnがエラーなら中身を巻き戻す
type memStore struct {
	mu         sync.Mutex
	seq        int64
	cart       map[int64]model.CartItem
	orders     map[int64]model.Order
	orderItems map[int64]model.OrderItem
	audits     []model.AuditLog

	// 明細作成を失敗させる
	failBulk error
}

var _ repo.TransactionManager = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		cart:       map[int64]model.CartItem{},
		orders:     map[int64]model.Order{},
		orderItems: map[int64]model.OrderItem{},
	}
}

type memSnapshot struct {
	seq        int64
	cart       map[int64]model.CartItem
	orders     map[int64]model.Order
	orderItems map[int64]model.OrderItem
	audits     []model.AuditLog
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	return memSnapshot{
		seq:        s.seq,
		cart:       copyMap(s.cart),
		orders:     copyMap(s.orders),
		orderItems: copyMap(s.orderItems),
		audits:     append([]model.AuditLog{}, s.audits...),
	}
}

func (s *memStore) restore(sn memSnapshot) {
	s.seq = sn.seq
	s.cart = sn.cart
	s.orders = sn.orders
	s.orderItems = sn.orderItems
	s.audits = sn.audits
}

func (s *memStore) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn := s.snapshot()
	if err := fn(memTx{s: s}); err != nil {
		s.restore(sn)
		return err
	}
	return nil
}

// トランザクション外から使うカート（CartUsecase用）
func (s *memStore) CartItems() repo.CartItemRepository {
	return lockedCart{s: s}
}

func (s *memStore) counts() (orders int, items int, audits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders), len(s.orderItems), len(s.audits)
}

type memTx struct{ s *memStore }

func (t memTx) Orders() repo.OrderRepository         { return memOrders{s: t.s} }
func (t memTx) OrderItems() repo.OrderItemRepository { return memOrderItems{s: t.s} }
func (t memTx) CartItems() repo.CartItemRepository   { return memCart{s: t.s} }
func (t memTx) AuditLogs() repo.AuditLogRepository   { return memAudit{s: t.s} }

// ---- cart ----

type memCart struct{ s *memStore }

func (c memCart) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	out := []model.CartItem{}
	for _, it := range c.s.cart {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c memCart) LockByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	return c.ListByUserID(ctx, userID)
}

func (c memCart) Upsert(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	for id, it := range c.s.cart {
		if it.UserID == item.UserID && it.MenuItemID == item.MenuItemID {
			item.ID = id
			c.s.cart[id] = item
			return item, nil
		}
	}
	item.ID = c.s.nextID()
	c.s.cart[item.ID] = item
	return item, nil
}

func (c memCart) DeleteByUserID(ctx context.Context, userID int64) error {
	for id, it := range c.s.cart {
		if it.UserID == userID {
			delete(c.s.cart, id)
		}
	}
	return nil
}

func (c memCart) DeleteByIDs(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		delete(c.s.cart, id)
	}
	return nil
}

func (c memCart) DeleteByUserAndMenuItem(ctx context.Context, userID int64, menuItemID int64) error {
	for id, it := range c.s.cart {
		if it.UserID == userID && it.MenuItemID == menuItemID {
			delete(c.s.cart, id)
			return nil
		}
	}
	return repo.ErrNotFound
}

type lockedCart struct{ s *memStore }

func (c lockedCart) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return memCart{s: c.s}.ListByUserID(ctx, userID)
}

func (c lockedCart) LockByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return memCart{s: c.s}.LockByUserID(ctx, userID)
}

func (c lockedCart) Upsert(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return memCart{s: c.s}.Upsert(ctx, item)
}

func (c lockedCart) DeleteByUserID(ctx context.Context, userID int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return memCart{s: c.s}.DeleteByUserID(ctx, userID)
}

func (c lockedCart) DeleteByIDs(ctx context.Context, ids []int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return memCart{s: c.s}.DeleteByIDs(ctx, ids)
}

func (c lockedCart) DeleteByUserAndMenuItem(ctx context.Context, userID int64, menuItemID int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return memCart{s: c.s}.DeleteByUserAndMenuItem(ctx, userID, menuItemID)
}

// ---- orders ----

type memOrders struct{ s *memStore }

func inScope(scope repo.OrderScope, o model.Order) bool {
	return scope.IsAll() || o.UserID == *scope.UserID
}

func (r memOrders) Create(ctx context.Context, o model.Order) (model.Order, error) {
	if o.IdempotencyKey != nil {
		for _, x := range r.s.orders {
			if x.UserID == o.UserID && x.IdempotencyKey != nil && *x.IdempotencyKey == *o.IdempotencyKey {
				return model.Order{}, repo.ErrDuplicate
			}
		}
	}
	o.ID = r.s.nextID()
	r.s.orders[o.ID] = o
	return o, nil
}

func (r memOrders) FindInScope(ctx context.Context, scope repo.OrderScope, orderID int64) (model.Order, error) {
	o, ok := r.s.orders[orderID]
	if !ok || !inScope(scope, o) {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r memOrders) FindInScopeForUpdate(ctx context.Context, scope repo.OrderScope, orderID int64) (model.Order, error) {
	return r.FindInScope(ctx, scope, orderID)
}

func (r memOrders) List(ctx context.Context, scope repo.OrderScope, page int, limit int) ([]model.Order, int64, error) {
	var all []model.Order
	for _, o := range r.s.orders {
		if inScope(scope, o) {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (page - 1) * limit
	if start >= len(all) {
		return []model.Order{}, int64(len(all)), nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r memOrders) Update(ctx context.Context, orderID int64, c repo.OrderChanges) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	if c.Status != nil {
		o.Status = *c.Status
	}
	if c.SetDeliveryCrew {
		o.DeliveryCrewID = c.DeliveryCrewID
	}
	r.s.orders[orderID] = o
	return nil
}

func (r memOrders) Delete(ctx context.Context, orderID int64) error {
	if _, ok := r.s.orders[orderID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.orders, orderID)
	return nil
}

func (r memOrders) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	for _, o := range r.s.orders {
		if o.UserID == userID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

// ---- order items ----

type memOrderItems struct{ s *memStore }

func (r memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if r.s.failBulk != nil {
		return r.s.failBulk
	}
	for _, it := range items {
		it.ID = r.s.nextID()
		it.OrderID = orderID
		r.s.orderItems[it.ID] = it
	}
	return nil
}

func (r memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	out := []model.OrderItem{}
	for _, it := range r.s.orderItems {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memOrderItems) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	out := map[int64][]model.OrderItem{}
	for _, id := range orderIDs {
		items, _ := r.ListByOrderID(ctx, id)
		out[id] = items
	}
	return out, nil
}

func (r memOrderItems) DeleteByOrderID(ctx context.Context, orderID int64) error {
	for id, it := range r.s.orderItems {
		if it.OrderID == orderID {
			delete(r.s.orderItems, id)
		}
	}
	return nil
}

// ---- audit ----

type memAudit struct{ s *memStore }

func (r memAudit) Create(ctx context.Context, log model.AuditLog) error {
	log.ID = int64(len(r.s.audits) + 1)
	r.s.audits = append(r.s.audits, log)
	return nil
}
