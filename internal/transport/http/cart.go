package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ikavin04/canteen/internal/domain"
)

// CartManager is the minimal interface needed for the cart endpoints.
type CartManager interface {
	Get(ctx context.Context) (domain.Cart, error)
	AddItem(ctx context.Context, itemID, quantity int) (domain.Cart, error)
	ChangeQuantity(ctx context.Context, itemID, delta int) (domain.Cart, error)
	RemoveLine(ctx context.Context, itemID int) (domain.Cart, error)
	Clear(ctx context.Context) error
}

// HandleCart serves GET (view) and DELETE (clear) on /api/cart.
func HandleCart(svc CartManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			cart, err := svc.Get(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toCartResponse(cart))
		case http.MethodDelete:
			if err := svc.Clear(r.Context()); err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, struct {
				Success bool `json:"success"`
			}{true})
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleCartItems serves POST /api/cart/items.
func HandleCartItems(svc CartManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req struct {
			ItemID   int `json:"item_id"`
			Quantity int `json:"quantity"`
		}
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		cart, err := svc.AddItem(r.Context(), req.ItemID, req.Quantity)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCartResponse(cart))
	}
}

// HandleCartItem serves PATCH (quantity delta) and DELETE (remove line)
// on /api/cart/items/{id}.
func HandleCartItem(svc CartManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, ok := parseCartItemPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodPatch:
			var req struct {
				Delta int `json:"delta"`
			}
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			cart, err := svc.ChangeQuantity(r.Context(), itemID, req.Delta)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toCartResponse(cart))
		case http.MethodDelete:
			cart, err := svc.RemoveLine(r.Context(), itemID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toCartResponse(cart))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// parseCartItemPath extracts the item id from /api/cart/items/{id}.
func parseCartItemPath(path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, "/api/cart/items/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
