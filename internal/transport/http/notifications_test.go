package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ikavin04/canteen/internal/app"
	"github.com/ikavin04/canteen/internal/domain"
	"github.com/ikavin04/canteen/internal/notify"
)

func TestHandleNotifications(t *testing.T) {
	t.Parallel()

	feed := notify.NewFeed()
	feed.Notify(notify.Notification{
		ID:         "n1",
		OrderToken: "ORD-AAAAAA",
		Status:     domain.StatusReady,
		Message:    "Your order #ORD-AAAAAA is ready for pickup!",
		CreatedAt:  time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	rec := httptest.NewRecorder()
	HandleNotifications(feed)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"order_id":"ORD-AAAAAA"`) {
		t.Fatalf("expected notification in body, got %s", rec.Body.String())
	}
}

type fakeStatsService struct {
	stats app.Stats
	err   error
}

func (f *fakeStatsService) Stats(_ context.Context) (app.Stats, error) {
	return f.stats, f.err
}

func TestHandleStats(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		handler := HandleStats(&fakeStatsService{stats: app.Stats{
			TotalOrders:       5,
			UncompletedOrders: 2,
			CompletedOrders:   2,
			CancelledOrders:   1,
			TotalRevenue:      480,
		}})
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"total_revenue":480`) {
			t.Fatalf("expected revenue in body, got %s", rec.Body.String())
		}
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		handler := HandleStats(&fakeStatsService{err: errors.New("boom")})
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
