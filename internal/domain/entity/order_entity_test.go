package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderLineSubtotal(t *testing.T) {
	l := OrderLine{UnitPrice: decimal.RequireFromString("1.00"), Quantity: 15}
	assert.True(t, l.Subtotal().Equal(decimal.RequireFromString("15.00")))

	l = OrderLine{UnitPrice: decimal.RequireFromString("0.10"), Quantity: 3}
	assert.True(t, l.Subtotal().Equal(decimal.RequireFromString("0.30")), "subtotal = %s", l.Subtotal())
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusNew, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled} {
		assert.True(t, s.Valid(), "%s", s)
	}
	assert.False(t, OrderStatus("SHIPPED").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleCustomer.Valid())
	assert.False(t, Role("MANAGER").Valid())
}
