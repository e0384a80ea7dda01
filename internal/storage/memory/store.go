// Package memory provides map-backed stores. They satisfy the same
// contracts as the pebble and postgres implementations and are the
// default when no persistence is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ikavin04/canteen/internal/app"
	"github.com/ikavin04/canteen/internal/domain"
)

// MenuStore keeps menu items in a map with auto-incremented ids.
type MenuStore struct {
	mu     sync.RWMutex
	items  map[int]domain.MenuItem
	nextID int
}

func NewMenuStore() *MenuStore {
	return &MenuStore{items: make(map[int]domain.MenuItem), nextID: 1}
}

func (s *MenuStore) GetItem(_ context.Context, id int) (domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return domain.MenuItem{}, domain.ErrItemNotFound
	}
	return item, nil
}

func (s *MenuStore) ListItems(_ context.Context) ([]domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MenuItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MenuStore) CreateItem(_ context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.nextID
	s.nextID++
	s.items[item.ID] = item
	return item, nil
}

func (s *MenuStore) UpdateItem(_ context.Context, item domain.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	s.items[item.ID] = item
	return nil
}

func (s *MenuStore) DeleteItem(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(s.items, id)
	return nil
}

// CartStore keeps one cart per user. A missing cart reads as empty.
type CartStore struct {
	mu    sync.RWMutex
	carts map[int]domain.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[int]domain.Cart)}
}

func (s *CartStore) GetCart(_ context.Context, userID int) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart := s.carts[userID]
	lines := make([]domain.CartLine, len(cart.Lines))
	copy(lines, cart.Lines)
	return domain.Cart{Lines: lines}, nil
}

func (s *CartStore) SaveCart(_ context.Context, userID int, cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]domain.CartLine, len(cart.Lines))
	copy(lines, cart.Lines)
	s.carts[userID] = domain.Cart{Lines: lines}
	return nil
}

// OrderStore keeps orders keyed by token, preserving insertion order so
// listings come back newest first.
type OrderStore struct {
	mu     sync.RWMutex
	byTok  map[string]int
	orders []domain.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{byTok: make(map[string]int)}
}

func (s *OrderStore) CreateOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byTok[order.Token]; ok {
		return domain.Order{}, domain.ErrDuplicateOrder
	}
	s.byTok[order.Token] = len(s.orders)
	s.orders = append(s.orders, order)
	return order, nil
}

func (s *OrderStore) GetOrder(_ context.Context, token string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byTok[token]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return s.orders[i], nil
}

func (s *OrderStore) ListOrders(_ context.Context, scope app.OrderScope) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Order
	for i := len(s.orders) - 1; i >= 0; i-- {
		o := s.orders[i]
		if !scope.All && o.UserID != scope.UserID {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *OrderStore) ListRecent(_ context.Context, userID int, since time.Time, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Order
	for i := len(s.orders) - 1; i >= 0 && len(out) < limit; i-- {
		o := s.orders[i]
		if o.UserID != userID || o.CreatedAt.Before(since) || !o.Status.Active() {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *OrderStore) UpdateStatus(_ context.Context, token string, status domain.OrderStatus, readyAt, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byTok[token]
	if !ok {
		return domain.ErrOrderNotFound
	}
	s.orders[i].Status = status
	s.orders[i].ReadyAt = readyAt
	s.orders[i].CompletedAt = completedAt
	return nil
}

// SessionStore holds the single signed-in user.
type SessionStore struct {
	mu   sync.RWMutex
	user *domain.User
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) CurrentUser(_ context.Context) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

func (s *SessionStore) SetCurrentUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return nil
}

func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}

// UserStore keeps accounts keyed by id with a username index.
type UserStore struct {
	mu         sync.RWMutex
	users      map[int]domain.User
	byUsername map[string]int
	byEmail    map[string]int
	nextID     int
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:      make(map[int]domain.User),
		byUsername: make(map[string]int),
		byEmail:    make(map[string]int),
		nextID:     1,
	}
}

func (s *UserStore) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUsername[user.Username]; ok {
		return domain.User{}, domain.ErrUsernameTaken
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return domain.User{}, domain.ErrEmailTaken
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = user
	s.byUsername[user.Username] = user.ID
	s.byEmail[user.Email] = user.ID
	return user, nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *UserStore) GetUser(_ context.Context, id int) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// WatermarkStore records the last status observed per order token.
type WatermarkStore struct {
	mu    sync.RWMutex
	marks map[string]domain.OrderStatus
}

func NewWatermarkStore() *WatermarkStore {
	return &WatermarkStore{marks: make(map[string]domain.OrderStatus)}
}

func (s *WatermarkStore) GetWatermark(_ context.Context, orderToken string) (domain.OrderStatus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.marks[orderToken]
	return status, ok, nil
}

func (s *WatermarkStore) SetWatermark(_ context.Context, orderToken string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks[orderToken] = status
	return nil
}
