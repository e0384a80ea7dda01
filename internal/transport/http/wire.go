package http

import (
	"time"

	"github.com/ikavin04/canteen/internal/domain"
)

// Response shapes follow the backend JSON the web client already
// consumes, so field names stay snake_case.

type cartLineResponse struct {
	ItemID   int     `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type cartResponse struct {
	Success bool               `json:"success"`
	Items   []cartLineResponse `json:"items"`
	Total   float64            `json:"total"`
}

type orderResponse struct {
	OrderID       string             `json:"order_id"`
	UserID        int                `json:"user_id"`
	Items         []cartLineResponse `json:"items"`
	TotalAmount   float64            `json:"total_amount"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	TransactionID string             `json:"transaction_id"`
	CreatedAt     time.Time          `json:"created_at"`
	ReadyAt       *time.Time         `json:"ready_at"`
	CompletedAt   *time.Time         `json:"completed_at"`
}

type menuItemResponse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type userResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func toCartLineResponses(lines []domain.CartLine) []cartLineResponse {
	out := make([]cartLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineResponse{ItemID: l.ItemID, Name: l.Name, Price: l.Price, Quantity: l.Quantity})
	}
	return out
}

func toCartResponse(cart domain.Cart) cartResponse {
	return cartResponse{Success: true, Items: toCartLineResponses(cart.Lines), Total: cart.Total()}
}

func toOrderResponse(order domain.Order) orderResponse {
	return orderResponse{
		OrderID:       order.Token,
		UserID:        order.UserID,
		Items:         toCartLineResponses(order.Lines),
		TotalAmount:   order.TotalAmount,
		Status:        string(order.Status),
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		TransactionID: order.TransactionID,
		CreatedAt:     order.CreatedAt,
		ReadyAt:       order.ReadyAt,
		CompletedAt:   order.CompletedAt,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toMenuItemResponse(item domain.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Category:    item.Category,
		Available:   item.Available,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{ID: user.ID, Username: user.Username, Email: user.Email, Role: string(user.Role)}
}
