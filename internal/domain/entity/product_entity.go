package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. Quantity is the available stock counter
// and must never go negative; reservations decrement it through a
// conditional update.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
