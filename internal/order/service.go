// Package order implements the order workflow: validation, catalog pricing,
// persistence and lifecycle event publishing.
package order

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/example/redshop/internal/catalog"
	"github.com/example/redshop/internal/domain"
	"github.com/example/redshop/internal/messaging"
)

// Store is the persistence boundary for orders.
type Store interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByUser(ctx context.Context, id int64, userID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
}

// Catalog looks up product price and availability.
type Catalog interface {
	Fetch(ctx context.Context, productID int64) (*catalog.Product, error)
}

// EventPublisher announces order lifecycle transitions.
type EventPublisher interface {
	Publish(ctx context.Context, event messaging.OrderEvent) error
}

// CreateItem is one requested line item in an order-creation call.
type CreateItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Service orchestrates order operations. Each operation runs to completion
// per request; catalog calls are sequential and blocking.
type Service struct {
	store     Store
	catalog   Catalog
	publisher EventPublisher
	log       *logrus.Entry
}

// NewService wires the workflow with its collaborators.
func NewService(store Store, cat Catalog, publisher EventPublisher, log *logrus.Entry) *Service {
	return &Service{store: store, catalog: cat, publisher: publisher, log: log}
}

// Create validates the request, prices every line item against the catalog,
// persists the order as pending and publishes order_created. The operation
// is all-or-nothing up to persistence: any catalog failure aborts it with
// nothing written and nothing published. Stock is only read, never reserved,
// so concurrent orders can both pass the check against the same count.
func (s *Service) Create(ctx context.Context, userID, userEmail string, items []CreateItem) (*domain.Order, error) {
	if userID == "" || userEmail == "" {
		return nil, errors.Wrap(domain.ErrValidation, "user information not provided")
	}
	if len(items) == 0 {
		return nil, errors.Wrap(domain.ErrValidation, "order items are required")
	}

	var (
		snapshots []domain.OrderItem
		total     float64
	)
	for _, item := range items {
		if item.Quantity < 0 {
			return nil, errors.Wrapf(domain.ErrValidation, "negative quantity for product %d", item.ProductID)
		}
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}

		product, err := s.catalog.Fetch(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < quantity {
			return nil, errors.Wrapf(catalog.ErrInsufficientStock, "insufficient stock for %s", product.Name)
		}

		subtotal := product.Price * float64(quantity)
		total += subtotal
		snapshots = append(snapshots, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   product.Price,
			Subtotal:    subtotal,
		})
	}

	order := &domain.Order{
		UserID:    userID,
		UserEmail: userEmail,
		Items:     snapshots,
		Total:     total,
		Status:    domain.StatusPending,
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, messaging.NewOrderCreated(order))
	return order, nil
}

// Cancel marks the user's order cancelled if it has not shipped yet and
// publishes order_cancelled.
func (s *Service) Cancel(ctx context.Context, orderID int64, userID string) (*domain.Order, error) {
	order, err := s.store.GetByUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !order.CanCancel() {
		return nil, errors.Wrapf(domain.ErrInvalidTransition, "cannot cancel order with status: %s", order.Status)
	}

	if err := s.store.UpdateStatus(ctx, orderID, domain.StatusCancelled); err != nil {
		return nil, err
	}
	order.Status = domain.StatusCancelled
	order.UpdatedAt = time.Now().UTC()

	s.publish(ctx, messaging.NewOrderCancelled(order))
	return order, nil
}

// UpdateStatus sets any recognized status on the order and publishes
// order_status_updated. This is the admin path: no transition graph is
// enforced, moving backward is accepted.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, newStatus string) (*domain.Order, error) {
	status, err := domain.ParseStatus(newStatus)
	if err != nil {
		return nil, err
	}

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()

	s.publish(ctx, messaging.NewOrderStatusUpdated(order))
	return order, nil
}

// GetForUser fetches one order owned by the user.
func (s *Service) GetForUser(ctx context.Context, orderID int64, userID string) (*domain.Order, error) {
	return s.store.GetByUser(ctx, orderID, userID)
}

// List returns one page of the user's orders plus the total count.
func (s *Service) List(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error) {
	return s.store.ListByUser(ctx, userID, page, perPage)
}

// publish is fire-and-forget: a publish failure is logged but never rolls
// back the committed state change, so the order can exist without any
// notification ever being sent.
func (s *Service) publish(ctx context.Context, event messaging.OrderEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event_type": event.EventType,
			"order_id":   event.OrderID,
		}).Error("failed to publish event")
	}
}
