package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/store-management-api/internal/domain/entity"
)

type orderFixture struct {
	users    *fakeUserRepo
	products *fakeProductRepo
	orders   *fakeOrderRepo
	svc      *OrderService
}

func newOrderFixture(t *testing.T, skipMissing bool) *orderFixture {
	t.Helper()
	logger := testLogger()
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo()

	userSvc := NewUserService(users, nil, nil, logger)
	productSvc := NewProductService(products, nil, nil, "", nil, "", logger)
	orderSvc := NewOrderService(orders, userSvc, productSvc, nil, logger, skipMissing)

	return &orderFixture{users: users, products: products, orders: orders, svc: orderSvc}
}

func (f *orderFixture) seedUser(t *testing.T) *entity.User {
	t.Helper()
	u := &entity.User{Email: "buyer@example.com", Password: "hash", Role: entity.RoleCustomer}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *orderFixture) seedProduct(t *testing.T, name, price string, qty int) *entity.Product {
	t.Helper()
	p := &entity.Product{Name: name, Price: decimal.RequireFromString(price), Quantity: qty}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func TestOrderAdd_SubtotalAndStock(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)
	p := f.seedProduct(t, "Mug", "1.00", 100)

	o, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: u.ID,
		Lines:  []OrderLineRequest{{ProductID: p.ID, Quantity: 15}},
	})
	require.NoError(t, err)

	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("15.00")), "subtotal = %s", o.Subtotal)
	assert.Equal(t, u.ID, o.UserID)
	assert.Equal(t, entity.OrderStatusNew, o.Status)
	assert.Len(t, o.Lines, 1)
	assert.Equal(t, 15, o.Lines[0].Quantity)

	stored, err := f.products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 85, stored.Quantity)
}

func TestOrderAdd_EmptyLinesRejected(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)

	_, err := f.svc.Add(context.Background(), OrderRequest{UserID: u.ID})
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Empty(t, f.orders.orders, "rejected order must not be persisted")
}

func TestOrderAdd_AllLinesUnresolvableRejected(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)

	_, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: u.ID,
		Lines:  []OrderLineRequest{{ProductID: "missing-1", Quantity: 2}, {ProductID: "missing-2", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Empty(t, f.orders.orders)
}

func TestOrderAdd_UnknownUserRejected(t *testing.T) {
	f := newOrderFixture(t, true)
	p := f.seedProduct(t, "Mug", "1.00", 10)

	_, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: "nobody",
		Lines:  []OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrUserNotFound)

	stored, _ := f.products.GetByID(context.Background(), p.ID)
	assert.Equal(t, 10, stored.Quantity, "no stock may move before the user is validated")
}

func TestOrderAdd_MissingProductSkipped(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)
	p := f.seedProduct(t, "Kettle", "42.00", 5)

	o, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: u.ID,
		Lines: []OrderLineRequest{
			{ProductID: "missing", Quantity: 3},
			{ProductID: p.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Len(t, o.Lines, 1)
	assert.Equal(t, p.ID, o.Lines[0].ProductID)
	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("84.00")))
}

func TestOrderAdd_MissingProductStrictPolicy(t *testing.T) {
	f := newOrderFixture(t, false)
	u := f.seedUser(t)
	p := f.seedProduct(t, "Kettle", "42.00", 5)

	_, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: u.ID,
		Lines: []OrderLineRequest{
			{ProductID: p.ID, Quantity: 2},
			{ProductID: "missing", Quantity: 3},
		},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, f.orders.orders)
}

func TestOrderAdd_InsufficientStockAborts(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)
	first := f.seedProduct(t, "Beans", "18.50", 50)
	second := f.seedProduct(t, "Grinder", "120.00", 1)

	_, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: u.ID,
		Lines: []OrderLineRequest{
			{ProductID: first.ID, Quantity: 10},
			{ProductID: second.ID, Quantity: 3},
		},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, f.orders.orders, "aborted order must not be persisted")

	// the first line's reservation stays applied
	p1, _ := f.products.GetByID(context.Background(), first.ID)
	assert.Equal(t, 40, p1.Quantity)
	p2, _ := f.products.GetByID(context.Background(), second.ID)
	assert.Equal(t, 1, p2.Quantity)
}

func TestOrderAdd_DuplicateLinesCollapse(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)
	p := f.seedProduct(t, "Mug", "9.90", 30)

	o, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: u.ID,
		Lines: []OrderLineRequest{
			{ProductID: p.ID, Quantity: 2},
			{ProductID: p.ID, Quantity: 7},
		},
	})
	require.NoError(t, err)

	assert.Len(t, o.Lines, 1)
	assert.Equal(t, 2, o.Lines[0].Quantity, "first occurrence wins")
	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("19.80")))

	stored, _ := f.products.GetByID(context.Background(), p.ID)
	assert.Equal(t, 28, stored.Quantity)
}

func TestOrderAdd_ExactDecimalSubtotal(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)
	a := f.seedProduct(t, "A", "0.10", 100)
	b := f.seedProduct(t, "B", "0.20", 100)

	o, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: u.ID,
		Lines: []OrderLineRequest{
			{ProductID: a.ID, Quantity: 1},
			{ProductID: b.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("0.30")), "subtotal = %s", o.Subtotal)
}

func TestOrderUpdate_UnknownOrder(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)
	p := f.seedProduct(t, "Mug", "9.90", 30)

	_, err := f.svc.Update(context.Background(), "missing", OrderRequest{
		UserID: u.ID,
		Lines:  []OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Empty(t, f.orders.orders)
}

func TestOrderUpdate_ReplacesLinesAndReprices(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)
	mug := f.seedProduct(t, "Mug", "9.90", 30)
	kettle := f.seedProduct(t, "Kettle", "42.00", 10)

	o, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: u.ID,
		Lines:  []OrderLineRequest{{ProductID: mug.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(context.Background(), o.ID, OrderRequest{
		UserID: u.ID,
		Status: entity.OrderStatusInProgress,
		Lines:  []OrderLineRequest{{ProductID: kettle.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusInProgress, updated.Status)
	assert.Len(t, updated.Lines, 1)
	assert.Equal(t, kettle.ID, updated.Lines[0].ProductID)
	assert.True(t, updated.Subtotal.Equal(decimal.RequireFromString("42.00")))

	// stock from the original line set is not credited back
	storedMug, _ := f.products.GetByID(context.Background(), mug.ID)
	assert.Equal(t, 28, storedMug.Quantity)
	storedKettle, _ := f.products.GetByID(context.Background(), kettle.ID)
	assert.Equal(t, 9, storedKettle.Quantity)
}

func TestOrderUpdate_ZeroSubtotalNotSaved(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)
	p := f.seedProduct(t, "Mug", "9.90", 30)

	o, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: u.ID,
		Lines:  []OrderLineRequest{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), o.ID, OrderRequest{UserID: u.ID})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	stored, err := f.svc.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, stored.Subtotal.Equal(o.Subtotal), "stored order must keep its previous state")
	assert.Len(t, stored.Lines, 1)
}

func TestOrderDelete(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)
	p := f.seedProduct(t, "Mug", "9.90", 30)

	o, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: u.ID,
		Lines:  []OrderLineRequest{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), o.ID))
	_, err = f.svc.GetByID(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// deletion never restores stock
	stored, _ := f.products.GetByID(context.Background(), p.ID)
	assert.Equal(t, 28, stored.Quantity)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), o.ID), ErrOrderNotFound)
}

func TestOrderGetAll_DoesNotMutate(t *testing.T) {
	f := newOrderFixture(t, true)
	u := f.seedUser(t)
	p := f.seedProduct(t, "Mug", "9.90", 30)

	_, err := f.svc.Add(context.Background(), OrderRequest{
		UserID: u.ID,
		Lines:  []OrderLineRequest{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	first, err := f.svc.GetAll(context.Background())
	require.NoError(t, err)
	second, err := f.svc.GetAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, first[0].Subtotal.Equal(second[0].Subtotal))

	stored, _ := f.products.GetByID(context.Background(), p.ID)
	assert.Equal(t, 28, stored.Quantity, "reads must not touch stock")
}
