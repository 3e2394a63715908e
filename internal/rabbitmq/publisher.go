// Package rabbitmq owns the durable queue: connection lifecycle, queue
// declaration and the publish/consume primitives with persistent delivery.
package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/example/redshop/internal/config"
	"github.com/example/redshop/internal/messaging"
)

// Publisher delivers one persistent message per call to the notification
// queue. Each publish opens and tears down its own connection, so a slow
// or stuck publish cannot block other publishes.
type Publisher struct {
	cfg config.BrokerConfig
	log *logrus.Entry
}

// NewPublisher creates a publisher for the configured broker and queue.
func NewPublisher(cfg config.BrokerConfig, log *logrus.Entry) *Publisher {
	return &Publisher{cfg: cfg, log: log}
}

// Publish serializes the event and delivers it to the durable queue via the
// default exchange with the persistence flag set. It does not retry and does
// not wait for consumer acknowledgment.
func (p *Publisher) Publish(ctx context.Context, event messaging.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	conn, err := amqp.DialConfig(p.cfg.URL(), amqp.Config{
		Heartbeat: p.cfg.Heartbeat,
		Dial:      amqp.DefaultDial(p.cfg.BlockedTimeout),
	})
	if err != nil {
		return errors.Wrap(err, "connect to broker")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer ch.Close()

	// Idempotent; safe to declare on every connection.
	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "declare queue %s", p.cfg.Queue)
	}

	err = ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return errors.Wrapf(err, "publish %s event", event.EventType)
	}

	p.log.WithFields(logrus.Fields{
		"event_type": event.EventType,
		"order_id":   event.OrderID,
		"queue":      p.cfg.Queue,
	}).Info("published event")
	return nil
}
