package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ikavin04/canteen/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeInvalidQuantity    = "invalid_quantity"
	codeInvalidPrice       = "invalid_price"
	codeNameRequired       = "name_required"
	codeUsernameTooShort   = "username_too_short"
	codePasswordTooShort   = "password_too_short"
	codeInvalidEmail       = "invalid_email"
	codeUsernameTaken      = "username_taken"
	codeEmailTaken         = "email_taken"
	codeInvalidCredentials = "invalid_credentials"
	codeNotAuthenticated   = "not_authenticated"
	codeItemNotFound       = "item_not_found"
	codeItemUnavailable    = "item_unavailable"
	codeLineNotFound       = "line_not_found"
	codeOrderNotFound      = "order_not_found"
	codeUserNotFound       = "user_not_found"
	codeEmptyCart          = "empty_cart"
	codeDuplicateOrder     = "duplicate_order"
	codeUnknownStatus      = "unknown_status"
	codeInvalidTransition  = "invalid_transition"
	codeNetworkError       = "network_error"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{Message: msg, Code: code})
	if err != nil {
		_, _ = w.Write([]byte(`{"success":false,"message":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps a service error onto the response code table.
func writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrItemNotFound:
		writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
	case domain.ErrLineNotFound:
		writeError(w, http.StatusNotFound, codeLineNotFound, err.Error())
	case domain.ErrOrderNotFound:
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case domain.ErrUserNotFound:
		writeError(w, http.StatusNotFound, codeUserNotFound, err.Error())
	case domain.ErrItemUnavailable:
		writeError(w, http.StatusConflict, codeItemUnavailable, err.Error())
	case domain.ErrUsernameTaken:
		writeError(w, http.StatusConflict, codeUsernameTaken, err.Error())
	case domain.ErrEmailTaken:
		writeError(w, http.StatusConflict, codeEmailTaken, err.Error())
	case domain.ErrDuplicateOrder:
		writeError(w, http.StatusConflict, codeDuplicateOrder, err.Error())
	case domain.ErrInvalidTransition:
		writeError(w, http.StatusUnprocessableEntity, codeInvalidTransition, err.Error())
	case domain.ErrUnknownStatus:
		writeError(w, http.StatusBadRequest, codeUnknownStatus, err.Error())
	case domain.ErrEmptyCart:
		writeError(w, http.StatusBadRequest, codeEmptyCart, err.Error())
	case domain.ErrInvalidQuantity:
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case domain.ErrInvalidPrice:
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case domain.ErrNameRequired:
		writeError(w, http.StatusBadRequest, codeNameRequired, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrUsernameTooShort:
		writeError(w, http.StatusBadRequest, codeUsernameTooShort, err.Error())
	case domain.ErrPasswordTooShort:
		writeError(w, http.StatusBadRequest, codePasswordTooShort, err.Error())
	case domain.ErrInvalidEmail:
		writeError(w, http.StatusBadRequest, codeInvalidEmail, err.Error())
	case domain.ErrInvalidCredentials:
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, err.Error())
	case domain.ErrNotAuthenticated:
		writeError(w, http.StatusUnauthorized, codeNotAuthenticated, err.Error())
	default:
		if errors.Is(err, domain.ErrNetwork) {
			writeError(w, http.StatusBadGateway, codeNetworkError, "backend unreachable, please try again")
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
