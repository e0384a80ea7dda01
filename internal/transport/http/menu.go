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

// MenuCatalog is the minimal interface needed for the menu endpoints.
type MenuCatalog interface {
	List(ctx context.Context) ([]domain.MenuItem, error)
	Get(ctx context.Context, id int) (domain.MenuItem, error)
	Create(ctx context.Context, in app.MenuItemInput) (domain.MenuItem, error)
	Update(ctx context.Context, id int, in app.MenuItemInput) (domain.MenuItem, error)
	ToggleAvailability(ctx context.Context, id int) (domain.MenuItem, error)
	Delete(ctx context.Context, id int) error
}

type menuItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Available   bool    `json:"available"`
}

func (r menuItemRequest) input() app.MenuItemInput {
	return app.MenuItemInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Available:   r.Available,
	}
}

// HandleMenu serves the collection routes: list and create.
func HandleMenu(svc MenuCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			items, err := svc.List(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]menuItemResponse, 0, len(items))
			for _, item := range items {
				resp = append(resp, toMenuItemResponse(item))
			}
			writeJSON(w, http.StatusOK, struct {
				Success bool               `json:"success"`
				Items   []menuItemResponse `json:"items"`
			}{true, resp})
		case http.MethodPost:
			var req menuItemRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			item, err := svc.Create(r.Context(), req.input())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, struct {
				Success bool             `json:"success"`
				Item    menuItemResponse `json:"item"`
			}{true, toMenuItemResponse(item)})
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleMenuItem serves the per-item routes: get, update, delete.
func HandleMenuItem(svc MenuCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := parseMenuAvailabilityPath(r.URL.Path); ok {
			if r.Method != http.MethodPatch {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			item, err := svc.ToggleAvailability(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, struct {
				Success bool             `json:"success"`
				Item    menuItemResponse `json:"item"`
			}{true, toMenuItemResponse(item)})
			return
		}

		id, ok := parseMenuItemPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			item, err := svc.Get(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, struct {
				Success bool             `json:"success"`
				Item    menuItemResponse `json:"item"`
			}{true, toMenuItemResponse(item)})
		case http.MethodPut:
			var req menuItemRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			item, err := svc.Update(r.Context(), id, req.input())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, struct {
				Success bool             `json:"success"`
				Item    menuItemResponse `json:"item"`
			}{true, toMenuItemResponse(item)})
		case http.MethodDelete:
			if err := svc.Delete(r.Context(), id); err != nil {
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

// parseMenuItemPath extracts the id from /api/menu/{id}.
func parseMenuItemPath(path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, "/api/menu/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseMenuAvailabilityPath extracts the id from
// /api/menu/{id}/availability.
func parseMenuAvailabilityPath(path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, "/api/menu/")
	if !ok {
		return 0, false
	}
	raw, ok := strings.CutSuffix(rest, "/availability")
	if !ok || raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
