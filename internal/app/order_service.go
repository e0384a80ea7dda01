package app

import (
	"context"
	"time"

	"github.com/ikavin04/canteen/internal/clock"
	"github.com/ikavin04/canteen/internal/domain"
)

// OrderScope selects which orders a listing returns: everything (admin) or
// a single user's orders.
type OrderScope struct {
	All    bool
	UserID int
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error)
	GetOrder(ctx context.Context, token string) (domain.Order, error)
	ListOrders(ctx context.Context, scope OrderScope) ([]domain.Order, error)
	ListRecent(ctx context.Context, userID int, since time.Time, limit int) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, token string, status domain.OrderStatus, readyAt, completedAt *time.Time) error
}

type OrderService struct {
	orders   OrderStore
	carts    CartStore
	sessions SessionStore
	clock    clock.Clock
}

func NewOrderService(orders OrderStore, carts CartStore, sessions SessionStore, clk clock.Clock) *OrderService {
	return &OrderService{
		orders:   orders,
		carts:    carts,
		sessions: sessions,
		clock:    clk,
	}
}

const (
	defaultPaymentMethod = "UPI"
	recentOrderWindow    = 24 * time.Hour
	recentOrderLimit     = 10
	tokenAttempts        = 5
)

type PlaceOrderResult struct {
	OrderToken    string
	TransactionID string
	TotalAmount   float64
}

// PlaceOrder converts the current cart into a persisted order and clears
// the cart. Payment always succeeds in this deployment.
func (s *OrderService) PlaceOrder(ctx context.Context, paymentMethod string) (PlaceOrderResult, error) {
	user, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		return PlaceOrderResult{}, err
	}
	if user == nil {
		return PlaceOrderResult{}, domain.ErrNotAuthenticated
	}

	cart, err := s.carts.GetCart(ctx, user.ID)
	if err != nil {
		return PlaceOrderResult{}, err
	}
	if cart.Empty() {
		return PlaceOrderResult{}, domain.ErrEmptyCart
	}

	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	token, err := s.freeOrderToken(ctx)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	lines := make([]domain.CartLine, len(cart.Lines))
	copy(lines, cart.Lines)

	order := domain.Order{
		Token:         token,
		UserID:        user.ID,
		Lines:         lines,
		TotalAmount:   cart.Total(),
		Status:        domain.StatusUncompleted,
		PaymentMethod: paymentMethod,
		PaymentStatus: "Paid",
		TransactionID: newTransactionID(),
		CreatedAt:     s.clock.Now(),
	}

	persisted, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	if err := s.carts.SaveCart(ctx, user.ID, domain.Cart{}); err != nil {
		return PlaceOrderResult{}, err
	}

	return PlaceOrderResult{
		OrderToken:    persisted.Token,
		TransactionID: persisted.TransactionID,
		TotalAmount:   persisted.TotalAmount,
	}, nil
}

// freeOrderToken generates a token not yet present in the store.
func (s *OrderService) freeOrderToken(ctx context.Context) (string, error) {
	for i := 0; i < tokenAttempts; i++ {
		token := newOrderToken()
		_, err := s.orders.GetOrder(ctx, token)
		if err == domain.ErrOrderNotFound {
			return token, nil
		}
		if err != nil {
			return "", err
		}
	}
	// Collisions five times in a row mean the store itself is suspect.
	return "", domain.ErrInvalidID
}

func (s *OrderService) ListOrders(ctx context.Context, scope OrderScope) ([]domain.Order, error) {
	if !scope.All && scope.UserID <= 0 {
		return nil, domain.ErrInvalidID
	}
	return s.orders.ListOrders(ctx, scope)
}

func (s *OrderService) GetOrder(ctx context.Context, token string) (domain.Order, error) {
	return s.orders.GetOrder(ctx, token)
}

// UpdateStatus moves an order along the status graph, stamping ReadyAt and
// CompletedAt as it passes those states.
func (s *OrderService) UpdateStatus(ctx context.Context, token string, next domain.OrderStatus) error {
	if !next.Known() {
		return domain.ErrUnknownStatus
	}

	order, err := s.orders.GetOrder(ctx, token)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(next) {
		return domain.ErrInvalidTransition
	}
	return s.applyStatus(ctx, order, next)
}

// ForceStatus sets any recognized status without an adjacency check. It
// exists only for admin corrections.
func (s *OrderService) ForceStatus(ctx context.Context, token string, next domain.OrderStatus) error {
	if !next.Known() {
		return domain.ErrUnknownStatus
	}

	order, err := s.orders.GetOrder(ctx, token)
	if err != nil {
		return err
	}
	return s.applyStatus(ctx, order, next)
}

func (s *OrderService) applyStatus(ctx context.Context, order domain.Order, next domain.OrderStatus) error {
	readyAt := order.ReadyAt
	completedAt := order.CompletedAt
	now := s.clock.Now()

	switch next {
	case domain.StatusReady:
		readyAt = &now
	case domain.StatusCompleted:
		completedAt = &now
	}

	return s.orders.UpdateStatus(ctx, order.Token, next, readyAt, completedAt)
}

// RecentOrders returns the user's active orders from the last day, newest
// first. The notification poller consumes this.
func (s *OrderService) RecentOrders(ctx context.Context, userID int) ([]domain.Order, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidID
	}
	since := s.clock.Now().Add(-recentOrderWindow)
	return s.orders.ListRecent(ctx, userID, since, recentOrderLimit)
}

type Stats struct {
	TotalOrders       int
	UncompletedOrders int
	CompletedOrders   int
	CancelledOrders   int
	TotalRevenue      float64
}

// Stats aggregates order counts and completed revenue for the admin
// dashboard.
func (s *OrderService) Stats(ctx context.Context) (Stats, error) {
	orders, err := s.orders.ListOrders(ctx, OrderScope{All: true})
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	stats.TotalOrders = len(orders)
	for _, o := range orders {
		switch o.Status {
		case domain.StatusCompleted:
			stats.CompletedOrders++
			stats.TotalRevenue += o.TotalAmount
		case domain.StatusCancelled:
			stats.CancelledOrders++
		case domain.StatusUncompleted:
			stats.UncompletedOrders++
		}
	}
	return stats, nil
}
