package app

import (
	"context"
	"strings"

	"github.com/ikavin04/canteen/internal/clock"
	"github.com/ikavin04/canteen/internal/domain"
)

// MenuService covers the admin menu management surface.
type MenuService struct {
	menu  MenuStore
	clock clock.Clock
}

func NewMenuService(menu MenuStore, clk clock.Clock) *MenuService {
	return &MenuService{
		menu:  menu,
		clock: clk,
	}
}

type MenuItemInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Available   bool
}

func (in MenuItemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.ErrNameRequired
	}
	if in.Price < 0 {
		return domain.ErrInvalidPrice
	}
	return nil
}

func (s *MenuService) List(ctx context.Context) ([]domain.MenuItem, error) {
	return s.menu.ListItems(ctx)
}

func (s *MenuService) Get(ctx context.Context, id int) (domain.MenuItem, error) {
	if id <= 0 {
		return domain.MenuItem{}, domain.ErrInvalidID
	}
	return s.menu.GetItem(ctx, id)
}

func (s *MenuService) Create(ctx context.Context, in MenuItemInput) (domain.MenuItem, error) {
	if err := in.validate(); err != nil {
		return domain.MenuItem{}, err
	}
	now := s.clock.Now()
	item := domain.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Available:   in.Available,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.menu.CreateItem(ctx, item)
}

func (s *MenuService) Update(ctx context.Context, id int, in MenuItemInput) (domain.MenuItem, error) {
	if id <= 0 {
		return domain.MenuItem{}, domain.ErrInvalidID
	}
	if err := in.validate(); err != nil {
		return domain.MenuItem{}, err
	}

	item, err := s.menu.GetItem(ctx, id)
	if err != nil {
		return domain.MenuItem{}, err
	}

	item.Name = strings.TrimSpace(in.Name)
	item.Description = in.Description
	item.Price = in.Price
	item.Category = in.Category
	item.Available = in.Available
	item.UpdatedAt = s.clock.Now()

	if err := s.menu.UpdateItem(ctx, item); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *MenuService) ToggleAvailability(ctx context.Context, id int) (domain.MenuItem, error) {
	item, err := s.menu.GetItem(ctx, id)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item.Available = !item.Available
	item.UpdatedAt = s.clock.Now()
	if err := s.menu.UpdateItem(ctx, item); err != nil {
		return domain.MenuItem{}, err
	}
	return item, nil
}

func (s *MenuService) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	return s.menu.DeleteItem(ctx, id)
}
