package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ikavin04/canteen/internal/clock"
	"github.com/ikavin04/canteen/internal/domain"
)

func orderFixture(t *testing.T, now time.Time) (*OrderService, *fakeOrderStore, *fakeCartStore, *fakeSessionStore) {
	t.Helper()
	orders := &fakeOrderStore{}
	carts := newFakeCartStore()
	sessions := &fakeSessionStore{user: &domain.User{ID: 7, Username: "student1", Role: domain.RoleUser}}
	svc := NewOrderService(orders, carts, sessions, clock.NewFixed(now))
	return svc, orders, carts, sessions
}

func TestOrderService_PlaceOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("creates an order and clears the cart", func(t *testing.T) {
		svc, orders, carts, _ := orderFixture(t, now)
		ctx := context.Background()
		carts.carts[7] = domain.Cart{Lines: []domain.CartLine{
			{ItemID: 1, Name: "Chicken Burger", Price: 120, Quantity: 2},
		}}

		res, err := svc.PlaceOrder(ctx, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.TotalAmount != 240 {
			t.Fatalf("expected total 240, got %v", res.TotalAmount)
		}
		if !strings.HasPrefix(res.OrderToken, "ORD-") || len(res.OrderToken) != len("ORD-")+6 {
			t.Fatalf("unexpected order token %q", res.OrderToken)
		}
		if !strings.HasPrefix(res.TransactionID, "TXN") {
			t.Fatalf("unexpected transaction id %q", res.TransactionID)
		}
		if !carts.carts[7].Empty() {
			t.Fatalf("expected cart cleared after checkout")
		}

		if len(orders.orders) != 1 {
			t.Fatalf("expected 1 persisted order, got %d", len(orders.orders))
		}
		order := orders.orders[0]
		if order.Status != domain.StatusUncompleted {
			t.Fatalf("expected initial status Uncompleted, got %s", order.Status)
		}
		if order.PaymentStatus != "Paid" || order.PaymentMethod != "UPI" {
			t.Fatalf("unexpected payment fields %+v", order)
		}
		if !order.CreatedAt.Equal(now) {
			t.Fatalf("expected CreatedAt %v, got %v", now, order.CreatedAt)
		}
	})

	t.Run("empty cart never persists", func(t *testing.T) {
		svc, orders, _, _ := orderFixture(t, now)
		if _, err := svc.PlaceOrder(context.Background(), "UPI"); err != domain.ErrEmptyCart {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
		if len(orders.orders) != 0 {
			t.Fatalf("expected no orders persisted, got %d", len(orders.orders))
		}
	})

	t.Run("requires a session", func(t *testing.T) {
		svc, _, _, sessions := orderFixture(t, now)
		sessions.user = nil
		if _, err := svc.PlaceOrder(context.Background(), "UPI"); err != domain.ErrNotAuthenticated {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("repeated checkouts get distinct tokens", func(t *testing.T) {
		svc, _, carts, _ := orderFixture(t, now)
		ctx := context.Background()

		seen := make(map[string]struct{})
		for i := 0; i < 20; i++ {
			carts.carts[7] = domain.Cart{Lines: []domain.CartLine{
				{ItemID: 1, Name: "Coffee", Price: 30, Quantity: 1},
			}}
			res, err := svc.PlaceOrder(ctx, "UPI")
			if err != nil {
				t.Fatalf("place %d: %v", i, err)
			}
			if _, dup := seen[res.OrderToken]; dup {
				t.Fatalf("duplicate order token %q", res.OrderToken)
			}
			if _, dup := seen[res.TransactionID]; dup {
				t.Fatalf("duplicate transaction id %q", res.TransactionID)
			}
			seen[res.OrderToken] = struct{}{}
			seen[res.TransactionID] = struct{}{}
		}
	})

	t.Run("total is frozen from the cart snapshot", func(t *testing.T) {
		svc, orders, carts, _ := orderFixture(t, now)
		ctx := context.Background()
		carts.carts[7] = domain.Cart{Lines: []domain.CartLine{
			{ItemID: 1, Name: "Pasta", Price: 150, Quantity: 1},
			{ItemID: 2, Name: "Juice", Price: 40, Quantity: 2},
		}}

		res, err := svc.PlaceOrder(ctx, "UPI")
		if err != nil {
			t.Fatalf("place: %v", err)
		}
		if res.TotalAmount != 230 {
			t.Fatalf("expected 230, got %v", res.TotalAmount)
		}
		if got := orders.orders[0].TotalAmount; got != 230 {
			t.Fatalf("persisted total %v, want 230", got)
		}
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	place := func(t *testing.T, svc *OrderService, carts *fakeCartStore) string {
		t.Helper()
		carts.carts[7] = domain.Cart{Lines: []domain.CartLine{
			{ItemID: 1, Name: "Coffee", Price: 30, Quantity: 1},
		}}
		res, err := svc.PlaceOrder(context.Background(), "UPI")
		if err != nil {
			t.Fatalf("place: %v", err)
		}
		return res.OrderToken
	}

	t.Run("walks the full path and stamps timestamps", func(t *testing.T) {
		svc, orders, carts, _ := orderFixture(t, now)
		ctx := context.Background()
		token := place(t, svc, carts)

		steps := []domain.OrderStatus{domain.StatusPreparing, domain.StatusReady, domain.StatusCompleted}
		for _, next := range steps {
			if err := svc.UpdateStatus(ctx, token, next); err != nil {
				t.Fatalf("update to %s: %v", next, err)
			}
		}

		order, err := svc.GetOrder(ctx, token)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if order.Status != domain.StatusCompleted {
			t.Fatalf("expected Completed, got %s", order.Status)
		}
		if order.ReadyAt == nil || !order.ReadyAt.Equal(now) {
			t.Fatalf("expected ReadyAt stamped, got %v", order.ReadyAt)
		}
		if order.CompletedAt == nil || !order.CompletedAt.Equal(now) {
			t.Fatalf("expected CompletedAt stamped, got %v", order.CompletedAt)
		}

		// Completed is terminal; Cancelled is unreachable now.
		if err := svc.UpdateStatus(ctx, token, domain.StatusCancelled); err != domain.ErrInvalidTransition {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		_ = orders
	})

	t.Run("cancellation allowed from Uncompleted and Preparing only", func(t *testing.T) {
		svc, _, carts, _ := orderFixture(t, now)
		ctx := context.Background()

		token := place(t, svc, carts)
		if err := svc.UpdateStatus(ctx, token, domain.StatusCancelled); err != nil {
			t.Fatalf("cancel from Uncompleted: %v", err)
		}

		token = place(t, svc, carts)
		if err := svc.UpdateStatus(ctx, token, domain.StatusPreparing); err != nil {
			t.Fatalf("to Preparing: %v", err)
		}
		if err := svc.UpdateStatus(ctx, token, domain.StatusCancelled); err != nil {
			t.Fatalf("cancel from Preparing: %v", err)
		}

		token = place(t, svc, carts)
		if err := svc.UpdateStatus(ctx, token, domain.StatusPreparing); err != nil {
			t.Fatalf("to Preparing: %v", err)
		}
		if err := svc.UpdateStatus(ctx, token, domain.StatusReady); err != nil {
			t.Fatalf("to Ready: %v", err)
		}
		if err := svc.UpdateStatus(ctx, token, domain.StatusCancelled); err != domain.ErrInvalidTransition {
			t.Fatalf("expected ErrInvalidTransition from Ready, got %v", err)
		}
	})

	t.Run("skipping states is rejected", func(t *testing.T) {
		svc, _, carts, _ := orderFixture(t, now)
		token := place(t, svc, carts)
		if err := svc.UpdateStatus(context.Background(), token, domain.StatusReady); err != domain.ErrInvalidTransition {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _, _, _ := orderFixture(t, now)
		if err := svc.UpdateStatus(context.Background(), "ORD-MISSING", domain.StatusPreparing); err != domain.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("unrecognized status", func(t *testing.T) {
		svc, _, carts, _ := orderFixture(t, now)
		token := place(t, svc, carts)
		if err := svc.UpdateStatus(context.Background(), token, "Delivered"); err != domain.ErrUnknownStatus {
			t.Fatalf("expected ErrUnknownStatus, got %v", err)
		}
	})

	t.Run("force-set bypasses adjacency", func(t *testing.T) {
		svc, _, carts, _ := orderFixture(t, now)
		ctx := context.Background()
		token := place(t, svc, carts)

		if err := svc.ForceStatus(ctx, token, domain.StatusCompleted); err != nil {
			t.Fatalf("force: %v", err)
		}
		order, err := svc.GetOrder(ctx, token)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if order.Status != domain.StatusCompleted {
			t.Fatalf("expected Completed, got %s", order.Status)
		}
		if order.CompletedAt == nil {
			t.Fatalf("expected CompletedAt stamped on force-set")
		}
	})
}

func TestOrderService_ListOrders(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, orders, _, _ := orderFixture(t, now)
	ctx := context.Background()

	orders.orders = []domain.Order{
		{Token: "ORD-A", UserID: 7, Status: domain.StatusUncompleted, Lines: []domain.CartLine{{ItemID: 1, Quantity: 1}}, CreatedAt: now},
		{Token: "ORD-B", UserID: 8, Status: domain.StatusReady, Lines: []domain.CartLine{{ItemID: 1, Quantity: 1}}, CreatedAt: now},
		{Token: "ORD-C", UserID: 7, Status: domain.StatusCompleted, Lines: []domain.CartLine{{ItemID: 1, Quantity: 1}}, CreatedAt: now},
	}

	all, err := svc.ListOrders(ctx, OrderScope{All: true})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(all))
	}
	// Insertion order is stable.
	if all[0].Token != "ORD-A" || all[2].Token != "ORD-C" {
		t.Fatalf("unexpected ordering %v", []string{all[0].Token, all[1].Token, all[2].Token})
	}

	mine, err := svc.ListOrders(ctx, OrderScope{UserID: 7})
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 orders for user 7, got %d", len(mine))
	}

	if _, err := svc.ListOrders(ctx, OrderScope{}); err != domain.ErrInvalidID {
		t.Fatalf("expected ErrInvalidID for empty scope, got %v", err)
	}
}

func TestOrderService_Stats(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, orders, _, _ := orderFixture(t, now)

	orders.orders = []domain.Order{
		{Token: "ORD-A", UserID: 7, Status: domain.StatusUncompleted, TotalAmount: 100, Lines: []domain.CartLine{{ItemID: 1, Quantity: 1}}},
		{Token: "ORD-B", UserID: 7, Status: domain.StatusCompleted, TotalAmount: 240, Lines: []domain.CartLine{{ItemID: 1, Quantity: 1}}},
		{Token: "ORD-C", UserID: 8, Status: domain.StatusCompleted, TotalAmount: 60, Lines: []domain.CartLine{{ItemID: 1, Quantity: 1}}},
		{Token: "ORD-D", UserID: 8, Status: domain.StatusCancelled, TotalAmount: 30, Lines: []domain.CartLine{{ItemID: 1, Quantity: 1}}},
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalOrders != 4 || stats.CompletedOrders != 2 || stats.CancelledOrders != 1 || stats.UncompletedOrders != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.TotalRevenue != 300 {
		t.Fatalf("expected revenue 300, got %v", stats.TotalRevenue)
	}
}
