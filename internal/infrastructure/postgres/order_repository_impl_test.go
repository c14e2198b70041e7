package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/store-management-api/internal/domain/entity"
	"github.com/storeops/store-management-api/internal/domain/repository"
)

func newOrderMock(t *testing.T) (pgxmock.PgxPoolIface, *OrderRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewOrderRepository(mock)
}

func TestOrderRepository_Create_CommitsOrderAndLines(t *testing.T) {
	mock, repo := newOrderMock(t)
	now := time.Now()
	date := now.Add(-time.Hour)

	o := &entity.Order{
		UserID:    "u1",
		OrderDate: date,
		Status:    entity.OrderStatusNew,
		Subtotal:  decimal.RequireFromString("19.80"),
		Lines: []entity.OrderLine{
			{ProductID: "p1", Name: "Mug", UnitPrice: decimal.RequireFromString("9.90"), Quantity: 2},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("u1", date, "NEW", o.Subtotal).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("o1", now, now))
	mock.ExpectExec("INSERT INTO order_lines").
		WithArgs("o1", "p1", "Mug", o.Lines[0].UnitPrice, 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	require.NoError(t, repo.Create(context.Background(), o))
	assert.Equal(t, "o1", o.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_RollsBackOnLineFailure(t *testing.T) {
	mock, repo := newOrderMock(t)
	now := time.Now()

	o := &entity.Order{
		UserID:    "u1",
		OrderDate: now,
		Status:    entity.OrderStatusNew,
		Subtotal:  decimal.RequireFromString("9.90"),
		Lines: []entity.OrderLine{
			{ProductID: "p1", Name: "Mug", UnitPrice: decimal.RequireFromString("9.90"), Quantity: 1},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("u1", now, "NEW", o.Subtotal).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("o1", now, now))
	mock.ExpectExec("INSERT INTO order_lines").
		WithArgs("o1", "p1", "Mug", o.Lines[0].UnitPrice, 1).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	assert.Error(t, repo.Create(context.Background(), o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_WithLines(t *testing.T) {
	mock, repo := newOrderMock(t)
	now := time.Now()

	mock.ExpectQuery("SELECT id, user_id, order_date, status, subtotal").
		WithArgs("o1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "order_date", "status", "subtotal", "created_at", "updated_at"}).
			AddRow("o1", "u1", now, "NEW", decimal.RequireFromString("19.80"), now, now))
	mock.ExpectQuery("SELECT product_id, name, unit_price, quantity").
		WithArgs("o1").
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "name", "unit_price", "quantity"}).
			AddRow("p1", "Mug", decimal.RequireFromString("9.90"), 2))

	o, err := repo.GetByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusNew, o.Status)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, "p1", o.Lines[0].ProductID)
	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("19.80")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	mock, repo := newOrderMock(t)

	mock.ExpectQuery("SELECT id, user_id, order_date, status, subtotal").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "order_date", "status", "subtotal", "created_at", "updated_at"}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Update_ReplacesLines(t *testing.T) {
	mock, repo := newOrderMock(t)
	now := time.Now()

	o := &entity.Order{
		ID:        "o1",
		UserID:    "u1",
		OrderDate: now,
		Status:    entity.OrderStatusInProgress,
		Subtotal:  decimal.RequireFromString("42.00"),
		Lines: []entity.OrderLine{
			{ProductID: "p2", Name: "Kettle", UnitPrice: decimal.RequireFromString("42.00"), Quantity: 1},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").
		WithArgs("u1", now, "IN_PROGRESS", o.Subtotal, pgxmock.AnyArg(), "o1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM order_lines").
		WithArgs("o1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("INSERT INTO order_lines").
		WithArgs("o1", "p2", "Kettle", o.Lines[0].UnitPrice, 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	require.NoError(t, repo.Update(context.Background(), o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Delete_NotFound(t *testing.T) {
	mock, repo := newOrderMock(t)

	mock.ExpectExec("DELETE FROM orders").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
