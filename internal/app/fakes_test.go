package app

import (
	"context"
	"sort"
	"time"

	"github.com/ikavin04/canteen/internal/domain"
)

type fakeMenuStore struct {
	items  map[int]domain.MenuItem
	nextID int
}

func newFakeMenuStore(items ...domain.MenuItem) *fakeMenuStore {
	s := &fakeMenuStore{items: make(map[int]domain.MenuItem), nextID: 1}
	for _, item := range items {
		s.items[item.ID] = item
		if item.ID >= s.nextID {
			s.nextID = item.ID + 1
		}
	}
	return s
}

func (s *fakeMenuStore) GetItem(_ context.Context, id int) (domain.MenuItem, error) {
	item, ok := s.items[id]
	if !ok {
		return domain.MenuItem{}, domain.ErrItemNotFound
	}
	return item, nil
}

func (s *fakeMenuStore) ListItems(_ context.Context) ([]domain.MenuItem, error) {
	ids := make([]int, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]domain.MenuItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.items[id])
	}
	return out, nil
}

func (s *fakeMenuStore) CreateItem(_ context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	item.ID = s.nextID
	s.nextID++
	s.items[item.ID] = item
	return item, nil
}

func (s *fakeMenuStore) UpdateItem(_ context.Context, item domain.MenuItem) error {
	if _, ok := s.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	s.items[item.ID] = item
	return nil
}

func (s *fakeMenuStore) DeleteItem(_ context.Context, id int) error {
	if _, ok := s.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(s.items, id)
	return nil
}

type fakeCartStore struct {
	carts map[int]domain.Cart
	saves int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[int]domain.Cart)}
}

func (s *fakeCartStore) GetCart(_ context.Context, userID int) (domain.Cart, error) {
	return s.carts[userID], nil
}

func (s *fakeCartStore) SaveCart(_ context.Context, userID int, cart domain.Cart) error {
	s.carts[userID] = cart
	s.saves++
	return nil
}

type fakeSessionStore struct {
	user *domain.User
}

func (s *fakeSessionStore) CurrentUser(_ context.Context) (*domain.User, error) {
	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

func (s *fakeSessionStore) SetCurrentUser(_ context.Context, user domain.User) error {
	s.user = &user
	return nil
}

func (s *fakeSessionStore) Clear(_ context.Context) error {
	s.user = nil
	return nil
}

type fakeOrderStore struct {
	orders []domain.Order
}

func (s *fakeOrderStore) find(token string) int {
	for i, o := range s.orders {
		if o.Token == token {
			return i
		}
	}
	return -1
}

func (s *fakeOrderStore) CreateOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	s.orders = append(s.orders, order)
	return order, nil
}

func (s *fakeOrderStore) GetOrder(_ context.Context, token string) (domain.Order, error) {
	if i := s.find(token); i >= 0 {
		return s.orders[i], nil
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

func (s *fakeOrderStore) ListOrders(_ context.Context, scope OrderScope) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if scope.All || o.UserID == scope.UserID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) ListRecent(_ context.Context, userID int, since time.Time, limit int) ([]domain.Order, error) {
	var out []domain.Order
	for i := len(s.orders) - 1; i >= 0 && len(out) < limit; i-- {
		o := s.orders[i]
		if o.UserID != userID || o.CreatedAt.Before(since) {
			continue
		}
		switch o.Status {
		case domain.StatusUncompleted, domain.StatusPreparing, domain.StatusReady:
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) UpdateStatus(_ context.Context, token string, status domain.OrderStatus, readyAt, completedAt *time.Time) error {
	i := s.find(token)
	if i < 0 {
		return domain.ErrOrderNotFound
	}
	s.orders[i].Status = status
	s.orders[i].ReadyAt = readyAt
	s.orders[i].CompletedAt = completedAt
	return nil
}

type fakeUserStore struct {
	users  map[int]domain.User
	nextID int
}

func newFakeUserStore(users ...domain.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int]domain.User), nextID: 1}
	for _, u := range users {
		s.users[u.ID] = u
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
	}
	return s
}

func (s *fakeUserStore) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return domain.User{}, domain.ErrUsernameTaken
		}
		if existing.Email == user.Email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (domain.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *fakeUserStore) GetUser(_ context.Context, id int) (domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}
