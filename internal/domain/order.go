// Package domain holds the order model and its lifecycle rules.
package domain

import (
	"time"

	"github.com/pkg/errors"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var (
	ErrValidation        = errors.New("invalid order request")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInvalidStatus     = errors.New("invalid order status")
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// ParseStatus validates a raw status string against the recognized set.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !validStatuses[status] {
		return "", errors.Wrapf(ErrInvalidStatus, "%q", s)
	}
	return status, nil
}

// OrderItem is a line-item snapshot captured at order creation time.
// It is never re-fetched or revalidated, even if the catalog changes later.
type OrderItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

// Order is a priced, persisted customer order.
type Order struct {
	ID        int64       `json:"id"`
	UserID    string      `json:"user_id"`
	UserEmail string      `json:"user_email"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    Status      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CanCancel reports whether the order may still be cancelled.
// Cancellation is only reachable from pending or confirmed.
func (o *Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}
