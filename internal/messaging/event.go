// Package messaging defines the wire format for order lifecycle events.
package messaging

import "github.com/example/redshop/internal/domain"

// Event type constants for order lifecycle events.
const (
	EventOrderCreated       = "order_created"
	EventOrderCancelled     = "order_cancelled"
	EventOrderStatusUpdated = "order_status_updated"
)

// OrderEvent is the message envelope published to the notification queue.
// Items is only set for order_created; Status only for order_status_updated.
type OrderEvent struct {
	EventType string             `json:"event_type"`
	OrderID   int64              `json:"order_id"`
	UserEmail string             `json:"user_email"`
	Total     float64            `json:"total"`
	Items     []domain.OrderItem `json:"items,omitempty"`
	Status    string             `json:"status,omitempty"`
}

// NewOrderCreated builds the event announcing a freshly persisted order.
func NewOrderCreated(o *domain.Order) OrderEvent {
	return OrderEvent{
		EventType: EventOrderCreated,
		OrderID:   o.ID,
		UserEmail: o.UserEmail,
		Total:     o.Total,
		Items:     o.Items,
	}
}

// NewOrderCancelled builds the event announcing a cancellation.
func NewOrderCancelled(o *domain.Order) OrderEvent {
	return OrderEvent{
		EventType: EventOrderCancelled,
		OrderID:   o.ID,
		UserEmail: o.UserEmail,
		Total:     o.Total,
	}
}

// NewOrderStatusUpdated builds the event announcing a status change.
func NewOrderStatusUpdated(o *domain.Order) OrderEvent {
	return OrderEvent{
		EventType: EventOrderStatusUpdated,
		OrderID:   o.ID,
		UserEmail: o.UserEmail,
		Total:     o.Total,
		Status:    string(o.Status),
	}
}
