// Package notification turns order lifecycle events into customer
// notifications.
package notification

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/example/redshop/internal/messaging"
	"github.com/example/redshop/internal/notifier"
	"github.com/example/redshop/internal/rabbitmq"
)

// Dispatcher maps an event's declared type to a notification builder and
// sends the result through the injected channel.
type Dispatcher struct {
	notifier notifier.Notifier
	log      *logrus.Entry
}

// NewDispatcher creates a dispatcher sending through the given channel.
func NewDispatcher(n notifier.Notifier, log *logrus.Entry) *Dispatcher {
	return &Dispatcher{notifier: n, log: log}
}

// Handle processes one raw event payload. An undecodable payload returns an
// ErrMalformed-wrapped error so the consumer drops it; an unknown event type
// is a successfully handled no-op; a send failure propagates so the consumer
// requeues the delivery.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) error {
	var event messaging.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return errors.Wrapf(rabbitmq.ErrMalformed, "decode event: %v", err)
	}

	log := d.log.WithFields(logrus.Fields{
		"event_type": event.EventType,
		"order_id":   event.OrderID,
	})
	log.Info("received event")

	var subject, text string
	switch event.EventType {
	case messaging.EventOrderCreated:
		subject, text = buildOrderConfirmation(event)
	case messaging.EventOrderCancelled:
		subject, text = buildOrderCancelled(event)
	case messaging.EventOrderStatusUpdated:
		subject, text = buildStatusUpdate(event)
	default:
		log.Warn("unknown event type, skipping")
		return nil
	}

	if err := d.notifier.Send(event.UserEmail, subject, text); err != nil {
		return errors.Wrapf(err, "send %s notification for order %d", event.EventType, event.OrderID)
	}
	log.Info("notification sent")
	return nil
}
