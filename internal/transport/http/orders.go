package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ikavin04/canteen/internal/app"
	"github.com/ikavin04/canteen/internal/domain"
)

// OrderPlacer is the minimal interface needed to check out.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, paymentMethod string) (app.PlaceOrderResult, error)
}

// OrderDirectory is the minimal interface needed for listing orders and
// changing their status.
type OrderDirectory interface {
	ListOrders(ctx context.Context, scope app.OrderScope) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, token string, next domain.OrderStatus) error
	ForceStatus(ctx context.Context, token string, next domain.OrderStatus) error
	RecentOrders(ctx context.Context, userID int) ([]domain.Order, error)
}

// HandleCheckout returns an HTTP handler for POST /api/checkout.
func HandleCheckout(svc OrderPlacer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req struct {
			PaymentMethod string `json:"payment_method"`
		}
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.PlaceOrder(r.Context(), req.PaymentMethod)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			Success       bool    `json:"success"`
			OrderID       string  `json:"order_id"`
			TransactionID string  `json:"transaction_id"`
			TotalAmount   float64 `json:"total_amount"`
		}{true, res.OrderToken, res.TransactionID, res.TotalAmount})
	}
}

// HandleOrders returns an HTTP handler for GET /api/orders, scoped by
// user_id or admin=true.
func HandleOrders(svc OrderDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var scope app.OrderScope
		query := r.URL.Query()
		switch {
		case query.Get("admin") == "true":
			scope.All = true
		case query.Get("user_id") != "":
			userID, err := strconv.Atoi(query.Get("user_id"))
			if err != nil || userID <= 0 {
				writeError(w, http.StatusBadRequest, codeInvalidID, "invalid user_id")
				return
			}
			scope.UserID = userID
		default:
			writeError(w, http.StatusBadRequest, codeInvalidID, "user_id or admin=true is required")
			return
		}

		orders, err := svc.ListOrders(r.Context(), scope)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Success bool            `json:"success"`
			Orders  []orderResponse `json:"orders"`
		}{true, toOrderResponses(orders)})
	}
}

// HandleOrderStatus returns an HTTP handler for PATCH
// /api/orders/{id}/status. force=true skips the transition check.
func HandleOrderStatus(svc OrderDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := parseOrderStatusPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPatch {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req struct {
			Status string `json:"status"`
			Force  bool   `json:"force"`
		}
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		next := domain.OrderStatus(req.Status)
		var err error
		if req.Force {
			err = svc.ForceStatus(r.Context(), token, next)
		} else {
			err = svc.UpdateStatus(r.Context(), token, next)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}{true, "order status updated"})
	}
}

// HandleRecentOrders returns an HTTP handler for GET
// /api/user/{id}/recent_orders, the endpoint the notification poller
// consumes. The response is a bare order array.
func HandleRecentOrders(svc OrderDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseRecentOrdersPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orders, err := svc.RecentOrders(r.Context(), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderResponses(orders))
	}
}

// parseOrderStatusPath extracts the token from /api/orders/{id}/status.
func parseOrderStatusPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/api/orders/")
	if !ok {
		return "", false
	}
	token, ok := strings.CutSuffix(rest, "/status")
	if !ok || token == "" || strings.Contains(token, "/") {
		return "", false
	}
	return token, true
}

// parseRecentOrdersPath extracts the user id from
// /api/user/{id}/recent_orders.
func parseRecentOrdersPath(path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, "/api/user/")
	if !ok {
		return 0, false
	}
	raw, ok := strings.CutSuffix(rest, "/recent_orders")
	if !ok || raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
