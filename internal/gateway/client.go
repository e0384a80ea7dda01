// Package gateway is a REST client for a remote canteen backend. It
// satisfies the menu and order contracts so services work unchanged
// whether state lives locally or behind HTTP. Accounts, the cart, the
// session and notification watermarks always stay on the device.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ikavin04/canteen/internal/app"
	"github.com/ikavin04/canteen/internal/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wire shapes, matching the backend's JSON API.

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// wireLine matches the backend's cart item shape. The backend validates
// the key set {id, name, price, quantity} on checkout and stores the
// lines verbatim, so the item id key is "id", not "item_id".
type wireLine struct {
	ItemID   int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type wireOrder struct {
	OrderID       string     `json:"order_id"`
	UserID        int        `json:"user_id"`
	Items         []wireLine `json:"items"`
	TotalAmount   float64    `json:"total_amount"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"payment_method"`
	PaymentStatus string     `json:"payment_status"`
	TransactionID string     `json:"transaction_id"`
	CreatedAt     time.Time  `json:"created_at"`
	ReadyAt       *time.Time `json:"ready_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

type wireMenuItem struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toOrder(w wireOrder) domain.Order {
	lines := make([]domain.CartLine, len(w.Items))
	for i, l := range w.Items {
		lines[i] = domain.CartLine{ItemID: l.ItemID, Name: l.Name, Price: l.Price, Quantity: l.Quantity}
	}
	return domain.Order{
		Token:         w.OrderID,
		UserID:        w.UserID,
		Lines:         lines,
		TotalAmount:   w.TotalAmount,
		Status:        domain.OrderStatus(w.Status),
		PaymentMethod: w.PaymentMethod,
		PaymentStatus: w.PaymentStatus,
		TransactionID: w.TransactionID,
		CreatedAt:     w.CreatedAt,
		ReadyAt:       w.ReadyAt,
		CompletedAt:   w.CompletedAt,
	}
}

func toMenuItem(w wireMenuItem) domain.MenuItem {
	return domain.MenuItem{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Price:       w.Price,
		Category:    w.Category,
		Available:   w.Available,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

// do issues a request and decodes the response into out. Transport
// failures map to ErrNetwork; notFound is returned for 404s.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, notFound error) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return notFound
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return domain.ErrInvalidTransition
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrDuplicateOrder
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: backend returned %d", domain.ErrNetwork, resp.StatusCode)
	case resp.StatusCode >= 400:
		var env envelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		if env.Message != "" {
			return fmt.Errorf("backend rejected request: %s", env.Message)
		}
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// --- OrderStore ---

// CreateOrder runs the order through the backend's checkout. The
// backend assigns the token, transaction id and total; the returned
// order carries its values.
func (c *Client) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	lines := make([]wireLine, len(order.Lines))
	for i, l := range order.Lines {
		lines[i] = wireLine{ItemID: l.ItemID, Name: l.Name, Price: l.Price, Quantity: l.Quantity}
	}
	body := struct {
		UserID        int        `json:"user_id"`
		Cart          []wireLine `json:"cart"`
		PaymentMethod string     `json:"payment_method"`
	}{order.UserID, lines, order.PaymentMethod}

	var resp struct {
		envelope
		OrderID       string  `json:"order_id"`
		TransactionID string  `json:"transaction_id"`
		TotalAmount   float64 `json:"total_amount"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/checkout", body, &resp, domain.ErrUserNotFound); err != nil {
		return domain.Order{}, err
	}
	if !resp.Success {
		return domain.Order{}, fmt.Errorf("checkout failed: %s", resp.Message)
	}

	order.Token = resp.OrderID
	order.TransactionID = resp.TransactionID
	order.TotalAmount = resp.TotalAmount
	return order, nil
}

// GetOrder scans the full listing; the backend has no single-order
// endpoint.
func (c *Client) GetOrder(ctx context.Context, token string) (domain.Order, error) {
	orders, err := c.ListOrders(ctx, app.OrderScope{All: true})
	if err != nil {
		return domain.Order{}, err
	}
	for _, order := range orders {
		if order.Token == token {
			return order, nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

func (c *Client) ListOrders(ctx context.Context, scope app.OrderScope) ([]domain.Order, error) {
	query := url.Values{}
	if scope.All {
		query.Set("admin", "true")
	} else {
		query.Set("user_id", strconv.Itoa(scope.UserID))
	}

	var resp struct {
		envelope
		Orders []wireOrder `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders?"+query.Encode(), nil, &resp, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("list orders failed: %s", resp.Message)
	}

	orders := make([]domain.Order, len(resp.Orders))
	for i, w := range resp.Orders {
		orders[i] = toOrder(w)
	}
	return orders, nil
}

// wireRecentOrder is the backend's recent_orders entry: a summary with
// an isoformat timestamp and an item count, not the full order.
type wireRecentOrder struct {
	OrderID     string  `json:"order_id"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	Timestamp   string  `json:"timestamp"`
	ItemsCount  int     `json:"items_count"`
}

// parseBackendTime reads the backend's isoformat timestamps, which omit
// the timezone suffix.
func parseBackendTime(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// ListRecent polls a bare order array. The backend applies the window,
// status filter and limit; since and limit only matter for local stores.
func (c *Client) ListRecent(ctx context.Context, userID int, _ time.Time, _ int) ([]domain.Order, error) {
	var wire []wireRecentOrder
	path := fmt.Sprintf("/api/user/%d/recent_orders", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &wire, domain.ErrUserNotFound); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, len(wire))
	for i, w := range wire {
		orders[i] = domain.Order{
			Token:       w.OrderID,
			UserID:      userID,
			TotalAmount: w.TotalAmount,
			Status:      domain.OrderStatus(w.Status),
			CreatedAt:   parseBackendTime(w.Timestamp),
		}
	}
	return orders, nil
}

// UpdateStatus forwards the new status; the backend stamps its own
// ready/completed times.
func (c *Client) UpdateStatus(ctx context.Context, token string, status domain.OrderStatus, _, _ *time.Time) error {
	body := struct {
		Status string `json:"status"`
	}{string(status)}

	var resp envelope
	path := fmt.Sprintf("/api/orders/%s/status", url.PathEscape(token))
	if err := c.do(ctx, http.MethodPatch, path, body, &resp, domain.ErrOrderNotFound); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("update status failed: %s", resp.Message)
	}
	return nil
}

// --- MenuStore ---

func (c *Client) GetItem(ctx context.Context, id int) (domain.MenuItem, error) {
	var resp struct {
		envelope
		Item wireMenuItem `json:"item"`
	}
	path := fmt.Sprintf("/api/menu/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, domain.ErrItemNotFound); err != nil {
		return domain.MenuItem{}, err
	}
	if !resp.Success {
		return domain.MenuItem{}, fmt.Errorf("get menu item failed: %s", resp.Message)
	}
	return toMenuItem(resp.Item), nil
}

func (c *Client) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	var resp struct {
		envelope
		Items []wireMenuItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/menu", nil, &resp, domain.ErrItemNotFound); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("list menu failed: %s", resp.Message)
	}

	items := make([]domain.MenuItem, len(resp.Items))
	for i, w := range resp.Items {
		items[i] = toMenuItem(w)
	}
	return items, nil
}

func (c *Client) CreateItem(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	var resp struct {
		envelope
		Item wireMenuItem `json:"item"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/menu", toWireMenuItem(item), &resp, domain.ErrItemNotFound); err != nil {
		return domain.MenuItem{}, err
	}
	if !resp.Success {
		return domain.MenuItem{}, fmt.Errorf("create menu item failed: %s", resp.Message)
	}
	return toMenuItem(resp.Item), nil
}

func (c *Client) UpdateItem(ctx context.Context, item domain.MenuItem) error {
	var resp envelope
	path := fmt.Sprintf("/api/menu/%d", item.ID)
	if err := c.do(ctx, http.MethodPut, path, toWireMenuItem(item), &resp, domain.ErrItemNotFound); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("update menu item failed: %s", resp.Message)
	}
	return nil
}

func (c *Client) DeleteItem(ctx context.Context, id int) error {
	var resp envelope
	path := fmt.Sprintf("/api/menu/%d", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp, domain.ErrItemNotFound); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("delete menu item failed: %s", resp.Message)
	}
	return nil
}

func toWireMenuItem(item domain.MenuItem) wireMenuItem {
	return wireMenuItem{
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
