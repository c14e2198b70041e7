package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/storeops/store-management-api/internal/domain/entity"
	"github.com/storeops/store-management-api/internal/domain/repository"
)

type OrderRepository struct {
	db DB
}

func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, order_date, status, subtotal)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, o.UserID, o.OrderDate, string(o.Status), o.Subtotal)
	if err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}

	if err := insertLines(ctx, tx, o.ID, o.Lines); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o := &entity.Order{}
	var status string
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, order_date, status, subtotal, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id)
	if err := row.Scan(&o.ID, &o.UserID, &o.OrderDate, &status, &o.Subtotal,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	o.Status = entity.OrderStatus(status)

	lines, err := r.linesFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return o, nil
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]entity.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, order_date, status, subtotal, created_at, updated_at
		FROM orders
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		var o entity.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderDate, &status, &o.Subtotal,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Status = entity.OrderStatus(status)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		lines, err := r.linesFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

// Update rewrites the order row and replaces its line set.
func (r *OrderRepository) Update(ctx context.Context, o *entity.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o.UpdatedAt = time.Now()
	res, err := tx.Exec(ctx, `
		UPDATE orders
		SET user_id = $1, order_date = $2, status = $3, subtotal = $4, updated_at = $5
		WHERE id = $6
	`, o.UserID, o.OrderDate, string(o.Status), o.Subtotal, o.UpdatedAt, o.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, o.ID); err != nil {
		return err
	}
	if err := insertLines(ctx, tx, o.ID, o.Lines); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) linesFor(ctx context.Context, orderID string) ([]entity.OrderLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT product_id, name, unit_price, quantity
		FROM order_lines
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func insertLines(ctx context.Context, tx pgx.Tx, orderID string, lines []entity.OrderLine) error {
	for _, l := range lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_lines (order_id, product_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)
		`, orderID, l.ProductID, l.Name, l.UnitPrice, l.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
