package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/storeops/store-management-api/internal/application"
	"github.com/storeops/store-management-api/internal/domain/entity"
	"github.com/storeops/store-management-api/pkg/response"
	"github.com/storeops/store-management-api/pkg/validation"
)

type OrderHandler struct {
	Svc    *app.OrderService
	Logger *logrus.Logger
}

func NewOrderHandler(svc *app.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Logger: logger}
}

type orderLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type orderRequest struct {
	UserID    string             `json:"user_id" binding:"required,uuid"`
	OrderDate *time.Time         `json:"order_date"`
	Status    string             `json:"status" binding:"omitempty,oneof=NEW IN_PROGRESS COMPLETED CANCELLED"`
	Products  []orderLineRequest `json:"products" binding:"omitempty,dive"`
}

type orderLineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type orderResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	OrderDate string              `json:"order_date"`
	Status    string              `json:"status"`
	Subtotal  string              `json:"subtotal"`
	Products  []orderLineResponse `json:"products"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at"`
}

func toOrderResponse(o *entity.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal().StringFixed(2),
		})
	}
	return orderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		OrderDate: o.OrderDate.UTC().Format(time.RFC3339),
		Status:    string(o.Status),
		Subtotal:  o.Subtotal.StringFixed(2),
		Products:  lines,
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (r orderRequest) toAppRequest() app.OrderRequest {
	req := app.OrderRequest{
		UserID: r.UserID,
		Status: entity.OrderStatus(r.Status),
	}
	if r.OrderDate != nil {
		req.OrderDate = *r.OrderDate
	}
	for _, l := range r.Products {
		req.Lines = append(req.Lines, app.OrderLineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return req
}

func (h *OrderHandler) writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrOrderNotFound):
		response.Error[any](c, http.StatusNotFound, "order not found", nil)
	case errors.Is(err, app.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, app.ErrProductNotFound):
		response.Error[any](c, http.StatusNotFound, "product not found", nil)
	case errors.Is(err, app.ErrInsufficientStock):
		response.Error[any](c, http.StatusUnprocessableEntity, "insufficient stock to fulfill order", nil)
	case errors.Is(err, app.ErrEmptyOrder):
		response.Error[any](c, http.StatusUnprocessableEntity, "unable to complete order: no valid products", nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "failed to process order", nil)
	}
}

// Add POST /api/orders
func (h *OrderHandler) Add(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	o, err := h.Svc.Add(c.Request.Context(), req.toAppRequest())
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toOrderResponse(o), "order placed", nil)
}

// GetByID GET /api/orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	o, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toOrderResponse(o), "order", nil)
}

// GetAll GET /api/orders
func (h *OrderHandler) GetAll(c *gin.Context) {
	orders, err := h.Svc.GetAll(c.Request.Context())
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to list orders", nil)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	response.Success(c, http.StatusOK, out, "orders", map[string]any{"count": len(out)})
}

// Update PUT /api/orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	o, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.toAppRequest())
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toOrderResponse(o), "order updated", nil)
}

// Delete DELETE /api/orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeOrderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
