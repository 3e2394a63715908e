package rabbitmq

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/example/redshop/internal/config"
)

// ErrMalformed marks a payload that cannot be decoded. Such deliveries are
// dropped (nack without requeue) because they cannot self-heal on redelivery.
var ErrMalformed = errors.New("malformed message payload")

// Handler processes one delivery body. A nil return acknowledges the
// delivery; an ErrMalformed-wrapped error drops it; any other error
// requeues it for redelivery.
type Handler func(ctx context.Context, body []byte) error

// Consumer is a single-threaded subscription loop against one durable
// queue. With prefetch 1 the broker hands over at most one unacknowledged
// delivery at a time.
type Consumer struct {
	conn  *amqp.Connection
	queue string
	log   *logrus.Entry
}

// NewConsumer dials a long-lived broker connection. A dial failure here is
// fatal at process startup; callers should exit non-zero rather than
// degrade silently.
func NewConsumer(cfg config.BrokerConfig, log *logrus.Entry) (*Consumer, error) {
	conn, err := amqp.DialConfig(cfg.URL(), amqp.Config{
		Heartbeat: cfg.Heartbeat,
		Dial:      amqp.DefaultDial(cfg.BlockedTimeout),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to broker")
	}
	return &Consumer{conn: conn, queue: cfg.Queue, log: log}, nil
}

// Run declares the queue and blocks consuming deliveries until the context
// is cancelled or the connection fails. Every delivery resolves to exactly
// one ack or nack on the channel that received it.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "declare queue %s", c.queue)
	}

	// Strict serial processing: the next delivery is not handed over until
	// the current one is acked or nacked.
	if err := ch.Qos(1, 0, false); err != nil {
		return errors.Wrap(err, "set prefetch")
	}

	tag := "notifier-" + uuid.NewString()
	deliveries, err := ch.Consume(c.queue, tag, false, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "consume queue %s", c.queue)
	}

	c.log.WithFields(logrus.Fields{"queue": c.queue, "consumer_tag": tag}).Info("waiting for messages")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("broker connection lost")
			}
			c.handleDelivery(ctx, d, handler)
		}
	}
}

// handleDelivery resolves one delivery to ack, nack-drop or nack-requeue.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler) {
	log := c.log.WithField("delivery_tag", d.DeliveryTag)

	err := handler(ctx, d.Body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			log.WithError(ackErr).Error("failed to ack delivery")
		}
	case errors.Is(err, ErrMalformed):
		log.WithError(err).Error("dropping undecodable message")
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.WithError(nackErr).Error("failed to nack delivery")
		}
	default:
		// Requeued with no backoff and no redelivery cap; a permanently
		// failing handler loops on the same message.
		log.WithError(err).Error("handler failed, requeueing message")
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.WithError(nackErr).Error("failed to nack delivery")
		}
	}
}

// Close tears down the consumer connection.
func (c *Consumer) Close() error {
	return c.conn.Close()
}
