package http

import (
	"context"
	"net/http"

	"github.com/ikavin04/canteen/internal/app"
	"github.com/ikavin04/canteen/internal/notify"
)

// NotificationFeed exposes recently emitted notifications, newest first.
type NotificationFeed interface {
	Recent() []notify.Notification
}

// HandleNotifications returns an HTTP handler for GET /api/notifications.
func HandleNotifications(feed NotificationFeed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Success       bool                  `json:"success"`
			Notifications []notify.Notification `json:"notifications"`
		}{true, feed.Recent()})
	}
}

// StatsService is the minimal interface needed for the stats endpoint.
type StatsService interface {
	Stats(ctx context.Context) (app.Stats, error)
}

// HandleStats returns an HTTP handler for GET /api/stats.
func HandleStats(svc StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Success           bool    `json:"success"`
			TotalOrders       int     `json:"total_orders"`
			UncompletedOrders int     `json:"uncompleted_orders"`
			CompletedOrders   int     `json:"completed_orders"`
			CancelledOrders   int     `json:"cancelled_orders"`
			TotalRevenue      float64 `json:"total_revenue"`
		}{
			Success:           true,
			TotalOrders:       stats.TotalOrders,
			UncompletedOrders: stats.UncompletedOrders,
			CompletedOrders:   stats.CompletedOrders,
			CancelledOrders:   stats.CancelledOrders,
			TotalRevenue:      stats.TotalRevenue,
		})
	}
}
