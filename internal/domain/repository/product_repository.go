package repository

import (
	"context"

	"github.com/storeops/store-management-api/internal/domain/entity"
)

// ProductRepository defines the interface for product persistence.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error

	// DecrementStock atomically subtracts qty from the product's
	// available quantity. It returns false when the remaining stock
	// is smaller than qty; the row is left untouched in that case.
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
}
