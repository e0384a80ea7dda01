// Package localstore persists application state in an embedded pebble
// database. It backs the standalone deployment, where orders, users and
// the session all live on the local disk.
package localstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/ikavin04/canteen/internal/app"
	"github.com/ikavin04/canteen/internal/domain"
)

// Key layout. Numeric ids are zero padded so lexical iteration order
// matches numeric order.
const (
	prefixUser      = "user/"
	prefixUsername  = "username/"
	prefixEmail     = "email/"
	prefixMenu      = "menu/"
	prefixCart      = "cart/"
	prefixOrder     = "order/"
	prefixWatermark = "mark/"
	keySession      = "session/current"
	keySeqUser      = "seq/user"
	keySeqMenu      = "seq/menu"
)

// Store implements every storage contract on a single pebble database.
type Store struct {
	db *pebble.DB

	// Guards id sequences and index writes, which need read-modify-write.
	mu sync.Mutex
}

func Open(dir string) (*Store, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func idKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%012d", prefix, id))
}

func (s *Store) get(key []byte, out any) (bool, error) {
	val, closer, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer closer.Close()
	if err := json.Unmarshal(val, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) set(key []byte, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return s.db.Set(key, raw, pebble.Sync)
}

// nextID increments a persisted sequence counter. Callers hold s.mu.
func (s *Store) nextID(key string) (int, error) {
	k := []byte(key)
	var cur uint64
	val, closer, err := s.db.Get(k)
	if err == nil {
		cur = binary.BigEndian.Uint64(val)
		closer.Close()
	} else if err != pebble.ErrNotFound {
		return 0, err
	}
	cur++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, cur)
	if err := s.db.Set(k, buf, pebble.Sync); err != nil {
		return 0, err
	}
	return int(cur), nil
}

// scan calls fn with the raw value of every key under prefix.
func (s *Store) scan(prefix string, fn func(val []byte) error) error {
	upper := append([]byte(prefix[:len(prefix)-1]), prefix[len(prefix)-1]+1)
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: upper,
	})
	if err != nil {
		return err
	}
	defer it.Close()
	for it.First(); it.Valid(); it.Next() {
		val := append([]byte(nil), it.Value()...)
		if err := fn(val); err != nil {
			return err
		}
	}
	return it.Error()
}

// --- MenuStore ---

func (s *Store) GetItem(_ context.Context, id int) (domain.MenuItem, error) {
	var item domain.MenuItem
	ok, err := s.get(idKey(prefixMenu, id), &item)
	if err != nil {
		return domain.MenuItem{}, err
	}
	if !ok {
		return domain.MenuItem{}, domain.ErrItemNotFound
	}
	return item, nil
}

func (s *Store) ListItems(_ context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := s.scan(prefixMenu, func(val []byte) error {
		var item domain.MenuItem
		if err := json.Unmarshal(val, &item); err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	return items, err
}

func (s *Store) CreateItem(_ context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.nextID(keySeqMenu)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item.ID = id
	if err := s.set(idKey(prefixMenu, id), item); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *Store) UpdateItem(_ context.Context, item domain.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var existing domain.MenuItem
	ok, err := s.get(idKey(prefixMenu, item.ID), &existing)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrItemNotFound
	}
	return s.set(idKey(prefixMenu, item.ID), item)
}

func (s *Store) DeleteItem(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var existing domain.MenuItem
	ok, err := s.get(idKey(prefixMenu, id), &existing)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrItemNotFound
	}
	return s.db.Delete(idKey(prefixMenu, id), pebble.Sync)
}

// --- CartStore ---

func (s *Store) GetCart(_ context.Context, userID int) (domain.Cart, error) {
	var cart domain.Cart
	if _, err := s.get(idKey(prefixCart, userID), &cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (s *Store) SaveCart(_ context.Context, userID int, cart domain.Cart) error {
	if cart.Empty() {
		return s.db.Delete(idKey(prefixCart, userID), pebble.Sync)
	}
	return s.set(idKey(prefixCart, userID), cart)
}

// --- OrderStore ---

func orderKey(token string) []byte {
	return []byte(prefixOrder + token)
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	if err := order.Validate(); err != nil {
		return domain.Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var existing domain.Order
	ok, err := s.get(orderKey(order.Token), &existing)
	if err != nil {
		return domain.Order{}, err
	}
	if ok {
		return domain.Order{}, domain.ErrDuplicateOrder
	}
	if err := s.set(orderKey(order.Token), order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *Store) GetOrder(_ context.Context, token string) (domain.Order, error) {
	var order domain.Order
	ok, err := s.get(orderKey(token), &order)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *Store) listOrders(match func(domain.Order) bool) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.scan(prefixOrder, func(val []byte) error {
		var order domain.Order
		if err := json.Unmarshal(val, &order); err != nil {
			return err
		}
		if match(order) {
			orders = append(orders, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Tokens break CreatedAt ties so listing order is deterministic.
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].Token < orders[j].Token
	})
	return orders, nil
}

func (s *Store) ListOrders(_ context.Context, scope app.OrderScope) ([]domain.Order, error) {
	return s.listOrders(func(o domain.Order) bool {
		return scope.All || o.UserID == scope.UserID
	})
}

func (s *Store) ListRecent(_ context.Context, userID int, since time.Time, limit int) ([]domain.Order, error) {
	orders, err := s.listOrders(func(o domain.Order) bool {
		return o.UserID == userID && !o.CreatedAt.Before(since) && o.Status.Active()
	})
	if err != nil {
		return nil, err
	}
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *Store) UpdateStatus(_ context.Context, token string, status domain.OrderStatus, readyAt, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var order domain.Order
	ok, err := s.get(orderKey(token), &order)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	order.ReadyAt = readyAt
	order.CompletedAt = completedAt
	return s.set(orderKey(token), order)
}

// --- SessionStore ---

func (s *Store) CurrentUser(_ context.Context) (*domain.User, error) {
	var user domain.User
	ok, err := s.get([]byte(keySession), &user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *Store) SetCurrentUser(_ context.Context, user domain.User) error {
	return s.set([]byte(keySession), user)
}

func (s *Store) Clear(_ context.Context) error {
	return s.db.Delete([]byte(keySession), pebble.Sync)
}

// --- UserStore ---

func (s *Store) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var taken int
	if ok, err := s.get([]byte(prefixUsername+user.Username), &taken); err != nil {
		return domain.User{}, err
	} else if ok {
		return domain.User{}, domain.ErrUsernameTaken
	}
	if ok, err := s.get([]byte(prefixEmail+user.Email), &taken); err != nil {
		return domain.User{}, err
	} else if ok {
		return domain.User{}, domain.ErrEmailTaken
	}

	id, err := s.nextID(keySeqUser)
	if err != nil {
		return domain.User{}, err
	}
	user.ID = id
	if err := s.set(idKey(prefixUser, id), user); err != nil {
		return domain.User{}, err
	}
	if err := s.set([]byte(prefixUsername+user.Username), id); err != nil {
		return domain.User{}, err
	}
	if err := s.set([]byte(prefixEmail+user.Email), id); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	var id int
	ok, err := s.get([]byte(prefixUsername+username), &id)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *Store) GetUser(_ context.Context, id int) (domain.User, error) {
	var user domain.User
	ok, err := s.get(idKey(prefixUser, id), &user)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// --- WatermarkStore ---

func (s *Store) GetWatermark(_ context.Context, orderToken string) (domain.OrderStatus, bool, error) {
	var status domain.OrderStatus
	ok, err := s.get([]byte(prefixWatermark+orderToken), &status)
	if err != nil {
		return "", false, err
	}
	return status, ok, nil
}

func (s *Store) SetWatermark(_ context.Context, orderToken string, status domain.OrderStatus) error {
	return s.set([]byte(prefixWatermark+orderToken), status)
}
