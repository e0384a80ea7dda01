package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ikavin04/canteen/internal/app"
	"github.com/ikavin04/canteen/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const orderColumns = `token, user_id, total_amount, status, payment_method, payment_status, transaction_id, created_at, ready_at, completed_at`

// CreateOrder inserts the order row and its line snapshot in one
// transaction.
func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	err := r.WithTx(ctx, func(txCtx context.Context) error {
		const stmt = `
INSERT INTO orders (token, user_id, total_amount, status, payment_method, payment_status, transaction_id, created_at, ready_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

		_, err := r.exec(txCtx, stmt,
			order.Token, order.UserID, order.TotalAmount, string(order.Status),
			order.PaymentMethod, order.PaymentStatus, order.TransactionID,
			order.CreatedAt, order.ReadyAt, order.CompletedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateOrder
			}
			if isForeignKeyViolation(err) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("create order: %w", err)
		}

		const lineStmt = `
INSERT INTO order_lines (order_token, position, item_id, name, price, quantity)
VALUES ($1, $2, $3, $4, $5, $6)`

		for i, line := range order.Lines {
			_, err := r.exec(txCtx, lineStmt,
				order.Token, i, line.ItemID, line.Name, line.Price, line.Quantity,
			)
			if err != nil {
				return fmt.Errorf("create order line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, token string) (domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE token = $1`, orderColumns)

	order, err := scanOrder(r.queryRow(ctx, query, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadLines(ctx, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context, scope app.OrderScope) ([]domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC`, orderColumns)
	args := []any{}
	if !scope.All {
		query = fmt.Sprintf(`SELECT %s FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, orderColumns)
		args = append(args, scope.UserID)
	}
	return r.listOrders(ctx, query, args...)
}

func (r *OrderRepository) ListRecent(ctx context.Context, userID int, since time.Time, limit int) ([]domain.Order, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM orders
WHERE user_id = $1
  AND created_at >= $2
  AND status = ANY($3)
ORDER BY created_at DESC
LIMIT $4`, orderColumns)

	active := []string{
		string(domain.StatusUncompleted),
		string(domain.StatusPreparing),
		string(domain.StatusReady),
	}
	return r.listOrders(ctx, query, userID, since, active, limit)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, token string, status domain.OrderStatus, readyAt, completedAt *time.Time) error {
	const stmt = `
UPDATE orders
SET status = $2, ready_at = $3, completed_at = $4
WHERE token = $1`

	tag, err := r.exec(ctx, stmt, token, string(status), readyAt, completedAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate orders: %w", rows.Err())
	}

	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrderRepository) loadLines(ctx context.Context, order *domain.Order) error {
	const query = `
SELECT item_id, name, price, quantity
FROM order_lines
WHERE order_token = $1
ORDER BY position ASC`

	rows, err := r.query(ctx, query, order.Token)
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ItemID, &line.Name, &line.Price, &line.Quantity); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	if rows.Err() != nil {
		return fmt.Errorf("iterate order lines: %w", rows.Err())
	}
	return nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(
		&o.Token, &o.UserID, &o.TotalAmount, &status,
		&o.PaymentMethod, &o.PaymentStatus, &o.TransactionID,
		&o.CreatedAt, &o.ReadyAt, &o.CompletedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
