package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/ikavin04/canteen/internal/app"
	"github.com/ikavin04/canteen/internal/domain"
	"github.com/ikavin04/canteen/internal/testutil"
)

func TestOrderRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	newOrder := func(token string, userID int, status domain.OrderStatus, created time.Time) domain.Order {
		return domain.Order{
			Token:  token,
			UserID: userID,
			Lines: []domain.CartLine{
				{ItemID: 1, Name: "Idli", Price: 30, Quantity: 2},
				{ItemID: 2, Name: "Vada", Price: 25, Quantity: 1},
			},
			TotalAmount:   85,
			Status:        status,
			PaymentMethod: "UPI",
			PaymentStatus: "Paid",
			TransactionID: "TXN0000000001",
			CreatedAt:     created,
		}
	}

	t.Run("CreateOrder persists lines and rejects duplicates", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		userID := testutil.InsertUser(t, ctx, pool, "kavin", "kavin@example.com")
		now := time.Now().UTC().Truncate(time.Millisecond)

		order := newOrder("ORD-AAAAAA", userID, domain.StatusUncompleted, now)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			t.Fatalf("create order: %v", err)
		}

		got, err := repo.GetOrder(ctx, "ORD-AAAAAA")
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		if len(got.Lines) != 2 || got.Lines[0].Name != "Idli" || got.Lines[1].Quantity != 1 {
			t.Fatalf("unexpected lines: %+v", got.Lines)
		}
		if got.TotalAmount != 85 || got.Status != domain.StatusUncompleted {
			t.Fatalf("unexpected order: %+v", got)
		}

		if _, err := repo.CreateOrder(ctx, order); err != domain.ErrDuplicateOrder {
			t.Fatalf("expected duplicate error, got %v", err)
		}

		stranger := newOrder("ORD-BBBBBB", userID+1000, domain.StatusUncompleted, now)
		if _, err := repo.CreateOrder(ctx, stranger); err != domain.ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("GetOrder returns ErrOrderNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		if _, err := repo.GetOrder(ctx, "ORD-MISSING"); err != domain.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("ListOrders scopes by user", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		first := testutil.InsertUser(t, ctx, pool, "kavin", "kavin@example.com")
		second := testutil.InsertUser(t, ctx, pool, "meera", "meera@example.com")
		now := time.Now().UTC().Truncate(time.Millisecond)

		for i, seed := range []struct {
			token  string
			userID int
		}{
			{"ORD-AAAAAA", first},
			{"ORD-BBBBBB", second},
			{"ORD-CCCCCC", first},
		} {
			order := newOrder(seed.token, seed.userID, domain.StatusUncompleted, now.Add(time.Duration(i)*time.Minute))
			if _, err := repo.CreateOrder(ctx, order); err != nil {
				t.Fatalf("create order %s: %v", seed.token, err)
			}
		}

		mine, err := repo.ListOrders(ctx, app.OrderScope{UserID: first})
		if err != nil {
			t.Fatalf("list orders: %v", err)
		}
		if len(mine) != 2 || mine[0].Token != "ORD-CCCCCC" {
			t.Fatalf("unexpected listing: %+v", mine)
		}

		all, err := repo.ListOrders(ctx, app.OrderScope{All: true})
		if err != nil {
			t.Fatalf("list all orders: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 orders, got %d", len(all))
		}
	})

	t.Run("ListRecent keeps active orders inside the window", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		userID := testutil.InsertUser(t, ctx, pool, "kavin", "kavin@example.com")
		now := time.Now().UTC().Truncate(time.Millisecond)

		seeds := []struct {
			token   string
			status  domain.OrderStatus
			created time.Time
		}{
			{"ORD-OLDONE", domain.StatusPreparing, now.Add(-30 * time.Hour)},
			{"ORD-DONE01", domain.StatusCompleted, now.Add(-time.Hour)},
			{"ORD-LIVE01", domain.StatusPreparing, now.Add(-2 * time.Hour)},
			{"ORD-LIVE02", domain.StatusReady, now.Add(-time.Hour)},
		}
		for _, seed := range seeds {
			if _, err := repo.CreateOrder(ctx, newOrder(seed.token, userID, seed.status, seed.created)); err != nil {
				t.Fatalf("create order %s: %v", seed.token, err)
			}
		}

		recent, err := repo.ListRecent(ctx, userID, now.Add(-24*time.Hour), 10)
		if err != nil {
			t.Fatalf("list recent: %v", err)
		}
		if len(recent) != 2 {
			t.Fatalf("expected 2 recent orders, got %d: %+v", len(recent), recent)
		}
		if recent[0].Token != "ORD-LIVE02" || recent[1].Token != "ORD-LIVE01" {
			t.Fatalf("unexpected ordering: %s, %s", recent[0].Token, recent[1].Token)
		}
	})

	t.Run("UpdateStatus stamps timestamps", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		userID := testutil.InsertUser(t, ctx, pool, "kavin", "kavin@example.com")
		now := time.Now().UTC().Truncate(time.Millisecond)

		if _, err := repo.CreateOrder(ctx, newOrder("ORD-AAAAAA", userID, domain.StatusPreparing, now)); err != nil {
			t.Fatalf("create order: %v", err)
		}

		readyAt := now.Add(10 * time.Minute)
		if err := repo.UpdateStatus(ctx, "ORD-AAAAAA", domain.StatusReady, &readyAt, nil); err != nil {
			t.Fatalf("update status: %v", err)
		}
		got, _ := repo.GetOrder(ctx, "ORD-AAAAAA")
		if got.Status != domain.StatusReady {
			t.Fatalf("expected Ready, got %s", got.Status)
		}
		if got.ReadyAt == nil || !got.ReadyAt.Equal(readyAt) {
			t.Fatalf("expected ReadyAt %v, got %v", readyAt, got.ReadyAt)
		}

		if err := repo.UpdateStatus(ctx, "ORD-MISSING", domain.StatusReady, nil, nil); err != domain.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}
