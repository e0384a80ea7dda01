package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ikavin04/canteen/internal/domain"
)

type MenuRepository struct {
	pool *pgxpool.Pool
}

func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

const menuColumns = `id, name, description, price, category, available, created_at, updated_at`

func (r *MenuRepository) GetItem(ctx context.Context, id int) (domain.MenuItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM menu_items WHERE id = $1`, menuColumns)

	item, err := scanMenuItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.MenuItem{}, domain.ErrItemNotFound
		}
		return domain.MenuItem{}, fmt.Errorf("get menu item: %w", err)
	}
	return item, nil
}

func (r *MenuRepository) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM menu_items ORDER BY id ASC`, menuColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate menu items: %w", rows.Err())
	}
	return items, nil
}

func (r *MenuRepository) CreateItem(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	const stmt = `
INSERT INTO menu_items (name, description, price, category, available, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	err := r.pool.QueryRow(ctx, stmt,
		item.Name, item.Description, item.Price, item.Category, item.Available,
		item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("create menu item: %w", err)
	}
	return item, nil
}

func (r *MenuRepository) UpdateItem(ctx context.Context, item domain.MenuItem) error {
	const stmt = `
UPDATE menu_items
SET name = $2, description = $3, price = $4, category = $5, available = $6, updated_at = $7
WHERE id = $1`

	tag, err := r.pool.Exec(ctx, stmt,
		item.ID, item.Name, item.Description, item.Price, item.Category,
		item.Available, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *MenuRepository) DeleteItem(ctx context.Context, id int) error {
	const stmt = `DELETE FROM menu_items WHERE id = $1`

	tag, err := r.pool.Exec(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func scanMenuItem(row pgx.Row) (domain.MenuItem, error) {
	var item domain.MenuItem
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.Price,
		&item.Category, &item.Available, &item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}
