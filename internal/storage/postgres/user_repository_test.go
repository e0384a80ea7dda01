package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/ikavin04/canteen/internal/domain"
	"github.com/ikavin04/canteen/internal/testutil"
)

func TestUserRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewUserRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateUser assigns id and enforces uniqueness", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		created, err := repo.CreateUser(ctx, domain.User{
			Username:     "kavin",
			Email:        "kavin@example.com",
			PasswordHash: "x",
			Role:         domain.RoleUser,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		if created.ID == 0 {
			t.Fatal("expected assigned id")
		}

		_, err = repo.CreateUser(ctx, domain.User{
			Username: "kavin", Email: "other@example.com", PasswordHash: "x", Role: domain.RoleUser, CreatedAt: time.Now().UTC(),
		})
		if err != domain.ErrUsernameTaken {
			t.Fatalf("expected ErrUsernameTaken, got %v", err)
		}

		_, err = repo.CreateUser(ctx, domain.User{
			Username: "other", Email: "kavin@example.com", PasswordHash: "x", Role: domain.RoleUser, CreatedAt: time.Now().UTC(),
		})
		if err != domain.ErrEmailTaken {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("FindByUsername and GetUser", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		id := testutil.InsertUser(t, ctx, pool, "kavin", "kavin@example.com")

		user, err := repo.FindByUsername(ctx, "kavin")
		if err != nil {
			t.Fatalf("find by username: %v", err)
		}
		if user.ID != id || user.Email != "kavin@example.com" {
			t.Fatalf("unexpected user: %+v", user)
		}

		if _, err := repo.FindByUsername(ctx, "ghost"); err != domain.ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}

		user, err = repo.GetUser(ctx, id)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if user.Username != "kavin" {
			t.Fatalf("unexpected user: %+v", user)
		}
		if _, err := repo.GetUser(ctx, id+1000); err != domain.ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
