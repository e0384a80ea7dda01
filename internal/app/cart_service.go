package app

import (
	"context"

	"github.com/ikavin04/canteen/internal/domain"
)

type MenuStore interface {
	GetItem(ctx context.Context, id int) (domain.MenuItem, error)
	ListItems(ctx context.Context) ([]domain.MenuItem, error)
	CreateItem(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	UpdateItem(ctx context.Context, item domain.MenuItem) error
	DeleteItem(ctx context.Context, id int) error
}

type CartStore interface {
	GetCart(ctx context.Context, userID int) (domain.Cart, error)
	SaveCart(ctx context.Context, userID int, cart domain.Cart) error
}

// CartService maintains the signed-in user's in-progress order. All writes
// are last-write-wins against the cart store.
type CartService struct {
	menu     MenuStore
	carts    CartStore
	sessions SessionStore
}

func NewCartService(menu MenuStore, carts CartStore, sessions SessionStore) *CartService {
	return &CartService{
		menu:     menu,
		carts:    carts,
		sessions: sessions,
	}
}

func (s *CartService) currentUserID(ctx context.Context) (int, error) {
	user, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, domain.ErrNotAuthenticated
	}
	return user.ID, nil
}

// AddItem puts quantity units of a menu item into the cart. The line price
// is snapshotted from the menu at add time.
func (s *CartService) AddItem(ctx context.Context, itemID, quantity int) (domain.Cart, error) {
	if quantity <= 0 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return domain.Cart{}, err
	}

	item, err := s.menu.GetItem(ctx, itemID)
	if err != nil {
		return domain.Cart{}, err
	}
	if !item.Available {
		return domain.Cart{}, domain.ErrItemUnavailable
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	if i := cart.Find(itemID); i >= 0 {
		cart.Lines[i].Quantity += quantity
	} else {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ItemID:   item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: quantity,
		})
	}

	if err := s.carts.SaveCart(ctx, userID, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// ChangeQuantity adjusts a line by delta. A resulting quantity of zero or
// below removes the line, matching the original client behavior.
func (s *CartService) ChangeQuantity(ctx context.Context, itemID, delta int) (domain.Cart, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	i := cart.Find(itemID)
	if i < 0 {
		return domain.Cart{}, domain.ErrLineNotFound
	}

	cart.Lines[i].Quantity += delta
	if cart.Lines[i].Quantity <= 0 {
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	}

	if err := s.carts.SaveCart(ctx, userID, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// RemoveLine drops a line unconditionally; removing an absent line succeeds.
func (s *CartService) RemoveLine(ctx context.Context, itemID int) (domain.Cart, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}

	if i := cart.Find(itemID); i >= 0 {
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
		if err := s.carts.SaveCart(ctx, userID, cart); err != nil {
			return domain.Cart{}, err
		}
	}
	return cart, nil
}

func (s *CartService) Clear(ctx context.Context) error {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return err
	}
	return s.carts.SaveCart(ctx, userID, domain.Cart{})
}

func (s *CartService) Get(ctx context.Context) (domain.Cart, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	return s.carts.GetCart(ctx, userID)
}

func (s *CartService) Total(ctx context.Context) (float64, error) {
	cart, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return cart.Total(), nil
}
