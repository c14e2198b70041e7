package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/storeops/store-management-api/internal/domain/entity"
	"github.com/storeops/store-management-api/internal/domain/repository"
)

type ProductRepository struct {
	db DB
}

func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO products (name, description, price, quantity, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Description, p.Price, p.Quantity, p.ImageURL)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p := &entity.Product{}
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, price, quantity, image_url, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id)

	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity,
		&p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price, quantity, image_url, created_at, updated_at
		FROM products
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity,
			&p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = time.Now()

	res, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, quantity = $4, image_url = $5, updated_at = $6
		WHERE id = $7
	`, p.Name, p.Description, p.Price, p.Quantity, p.ImageURL, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DecrementStock subtracts qty only when enough stock remains. The
// guard in the WHERE clause makes the check-and-decrement atomic, so
// concurrent reservations cannot drive quantity negative.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE products
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
	`, id, qty)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
