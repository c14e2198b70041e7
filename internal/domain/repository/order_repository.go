package repository

import (
	"context"

	"github.com/storeops/store-management-api/internal/domain/entity"
)

// OrderRepository defines the interface for order persistence.
// Create and Update write the order row and its lines in one
// transaction; Update replaces the stored line set.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetAll(ctx context.Context) ([]entity.Order, error)
	Update(ctx context.Context, o *entity.Order) error
	Delete(ctx context.Context, id string) error
}
