package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/storeops/store-management-api/internal/domain/entity"
	repo "github.com/storeops/store-management-api/internal/domain/repository"
	"github.com/storeops/store-management-api/pkg/helpers"
)

// OrderService orchestrates the order workflow: it validates the
// submitting user against the directory, reserves stock line by line
// through the catalog, prices the resolved lines with exact decimal
// arithmetic and persists the result.
//
// Stock decrements are applied per line as they clear validation and
// are never compensated: a later line failing with insufficient stock,
// or the whole order being rejected for a zero subtotal, leaves the
// earlier decrements in place. Deleting an order does not restore
// stock either.
type OrderService struct {
	Repo    repo.OrderRepository
	Users   *UserService
	Catalog *ProductService
	Pub     *helpers.RabbitPublisher
	Logger  *logrus.Logger

	// SkipMissingProducts selects the line-resolution policy for
	// unknown product references: drop the line (default) or fail the
	// whole request.
	SkipMissingProducts bool
}

func NewOrderService(r repo.OrderRepository, users *UserService, catalog *ProductService, pub *helpers.RabbitPublisher, logger *logrus.Logger, skipMissing bool) *OrderService {
	return &OrderService{
		Repo:                r,
		Users:               users,
		Catalog:             catalog,
		Pub:                 pub,
		Logger:              logger,
		SkipMissingProducts: skipMissing,
	}
}

// OrderLineRequest is one requested product line: which product and
// how many units.
type OrderLineRequest struct {
	ProductID string
	Quantity  int
}

// OrderRequest is the client-submitted order payload.
type OrderRequest struct {
	UserID    string
	OrderDate time.Time
	Status    entity.OrderStatus
	Lines     []OrderLineRequest
}

// OrderEvent is published to the order queue after a successful
// create, update or delete.
type OrderEvent struct {
	Type      string    `json:"type"` // created, updated, deleted
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email,omitempty"`
	Status    string    `json:"status,omitempty"`
	Subtotal  string    `json:"subtotal,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Add turns an order request into a priced, stock-validated, persisted
// order. The submitted user reference is replaced by the directory's
// canonical identity. An order whose resolved lines price to zero is
// rejected and not persisted.
func (s *OrderService) Add(ctx context.Context, req OrderRequest) (*entity.Order, error) {
	user, err := s.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		UserID:    user.ID,
		OrderDate: req.OrderDate,
		Status:    req.Status,
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now().UTC()
	}
	if order.Status == "" {
		order.Status = entity.OrderStatusNew
	}

	if len(req.Lines) > 0 {
		lines, err := s.resolveLines(ctx, req.Lines)
		if err != nil {
			return nil, err
		}
		order.Lines = lines
	}

	order.Subtotal = subtotalOf(order.Lines)
	if order.Subtotal.IsZero() {
		return nil, ErrEmptyOrder
	}

	if err := s.Repo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"subtotal": order.Subtotal.String(),
		"lines":    len(order.Lines),
	}).Info("order created")
	s.publish(ctx, "created", order, user.Email)
	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) GetAll(ctx context.Context) ([]entity.Order, error) {
	return s.Repo.GetAll(ctx)
}

// Update re-runs the full validation-and-pricing workflow against new
// input. The stored line set is replaced by the newly resolved lines;
// stock is decremented again for the new quantities, with no credit
// for the quantities the previous line set had reserved.
func (s *OrderService) Update(ctx context.Context, id string, req OrderRequest) (*entity.Order, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	order.UserID = user.ID
	order.OrderDate = req.OrderDate
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now().UTC()
	}
	if req.Status != "" {
		order.Status = req.Status
	}

	order.Lines = nil
	if len(req.Lines) > 0 {
		lines, err := s.resolveLines(ctx, req.Lines)
		if err != nil {
			return nil, err
		}
		order.Lines = lines
	}

	order.Subtotal = subtotalOf(order.Lines)
	if order.Subtotal.IsZero() {
		return nil, ErrEmptyOrder
	}

	if err := s.Repo.Update(ctx, order); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"subtotal": order.Subtotal.String(),
	}).Info("order updated")
	s.publish(ctx, "updated", order, user.Email)
	return order, nil
}

// Delete removes the order. Stock previously reserved by its lines is
// not restored.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	s.Logger.WithField("order_id", id).Info("order deleted")
	s.publish(ctx, "deleted", order, "")
	return nil
}

// resolveLines reserves stock for each requested line and returns the
// successfully reserved lines as product snapshots. Duplicate product
// references collapse to the first line. An unknown product is dropped
// or fails the pass depending on the skip policy; insufficient stock
// always aborts the pass, leaving earlier reservations applied.
func (s *OrderService) resolveLines(ctx context.Context, reqs []OrderLineRequest) ([]entity.OrderLine, error) {
	resolved := make([]entity.OrderLine, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))

	for _, line := range reqs {
		if _, dup := seen[line.ProductID]; dup {
			continue
		}
		seen[line.ProductID] = struct{}{}

		p, err := s.Catalog.Reserve(ctx, line.ProductID, line.Quantity)
		if errors.Is(err, ErrProductNotFound) {
			if !s.SkipMissingProducts {
				return nil, err
			}
			s.Logger.WithField("product_id", line.ProductID).Warn("dropping order line: product not found")
			continue
		}
		if err != nil {
			return nil, err
		}

		resolved = append(resolved, entity.OrderLine{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  line.Quantity,
		})
	}
	return resolved, nil
}

func subtotalOf(lines []entity.OrderLine) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}
	return subtotal
}

// publish emits an order event; failures are logged, never surfaced.
func (s *OrderService) publish(ctx context.Context, typ string, o *entity.Order, email string) {
	if s.Pub == nil {
		return
	}
	ev := OrderEvent{
		Type:      typ,
		OrderID:   o.ID,
		UserID:    o.UserID,
		UserEmail: email,
		Status:    string(o.Status),
		Subtotal:  o.Subtotal.String(),
		Timestamp: time.Now().UTC(),
	}
	if err := s.Pub.PublishJSON(ctx, ev); err != nil {
		s.Logger.WithError(err).WithField("order_id", o.ID).Warn("order event publish failed")
	}
}
