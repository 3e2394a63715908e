package notification

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/redshop/internal/domain"
	"github.com/example/redshop/internal/messaging"
	"github.com/example/redshop/internal/rabbitmq"
)

// fakeNotifier records sends and can be told to fail.
type fakeNotifier struct {
	err  error
	sent []sentNotification
}

type sentNotification struct {
	to      string
	subject string
	body    string
}

func (f *fakeNotifier) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNotification{to: to, subject: subject, body: body})
	return nil
}

func newTestDispatcher() (*Dispatcher, *fakeNotifier) {
	n := &fakeNotifier{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewDispatcher(n, logrus.NewEntry(log)), n
}

func marshal(t *testing.T, event messaging.OrderEvent) []byte {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body
}

func TestDispatcher_Handle_OrderCreated(t *testing.T) {
	dispatcher, n := newTestDispatcher()

	event := messaging.OrderEvent{
		EventType: messaging.EventOrderCreated,
		OrderID:   42,
		UserEmail: "customer@example.com",
		Total:     20.00,
		Items: []domain.OrderItem{
			{ProductID: 1, ProductName: "Wireless Mouse", Quantity: 2, UnitPrice: 10.00, Subtotal: 20.00},
		},
	}

	err := dispatcher.Handle(context.Background(), marshal(t, event))

	require.NoError(t, err)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "customer@example.com", n.sent[0].to)
	assert.Equal(t, "Order Confirmation - Order #42", n.sent[0].subject)
	assert.Contains(t, n.sent[0].body, "- Wireless Mouse x2 - $20.00")
	assert.Contains(t, n.sent[0].body, "Total Amount: $20.00")
	assert.Contains(t, n.sent[0].body, "Order ID: #42")
}

func TestDispatcher_Handle_OrderCancelled(t *testing.T) {
	dispatcher, n := newTestDispatcher()

	event := messaging.OrderEvent{
		EventType: messaging.EventOrderCancelled,
		OrderID:   42,
		UserEmail: "customer@example.com",
		Total:     20.00,
	}

	err := dispatcher.Handle(context.Background(), marshal(t, event))

	require.NoError(t, err)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "Order Cancelled - Order #42", n.sent[0].subject)
	assert.Contains(t, n.sent[0].body, "cancelled as requested")
	assert.Contains(t, n.sent[0].body, "Total Amount: $20.00")
}

func TestDispatcher_Handle_StatusUpdated_CannedMessages(t *testing.T) {
	cases := []struct {
		status string
		want   string
	}{
		{"confirmed", "Your order has been confirmed and is being prepared."},
		{"shipped", "Your order has been shipped! It should arrive soon."},
		{"delivered", "Your order has been delivered. Thank you for shopping with us!"},
		{"cancelled", "Your order has been cancelled."},
	}

	for _, tc := range cases {
		dispatcher, n := newTestDispatcher()
		event := messaging.OrderEvent{
			EventType: messaging.EventOrderStatusUpdated,
			OrderID:   7,
			UserEmail: "customer@example.com",
			Status:    tc.status,
		}

		err := dispatcher.Handle(context.Background(), marshal(t, event))

		require.NoError(t, err)
		require.Len(t, n.sent, 1, "status %s", tc.status)
		assert.Equal(t, "Order Update - Order #7", n.sent[0].subject)
		assert.Contains(t, n.sent[0].body, tc.want)
	}
}

func TestDispatcher_Handle_StatusUpdated_GenericFallback(t *testing.T) {
	dispatcher, n := newTestDispatcher()

	event := messaging.OrderEvent{
		EventType: messaging.EventOrderStatusUpdated,
		OrderID:   7,
		UserEmail: "customer@example.com",
		Status:    "on_hold",
	}

	err := dispatcher.Handle(context.Background(), marshal(t, event))

	require.NoError(t, err)
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0].body, "Your order status has been updated to: on_hold")
}

func TestDispatcher_Handle_MalformedPayload(t *testing.T) {
	dispatcher, n := newTestDispatcher()

	err := dispatcher.Handle(context.Background(), []byte(`{not json`))

	assert.ErrorIs(t, err, rabbitmq.ErrMalformed)
	assert.Empty(t, n.sent)
}

func TestDispatcher_Handle_UnknownEventType(t *testing.T) {
	dispatcher, n := newTestDispatcher()

	event := messaging.OrderEvent{EventType: "order_archived", OrderID: 7}

	// Unknown types are a successfully handled no-op, not an error.
	err := dispatcher.Handle(context.Background(), marshal(t, event))

	assert.NoError(t, err)
	assert.Empty(t, n.sent)
}

func TestDispatcher_Handle_NotifierFailurePropagates(t *testing.T) {
	dispatcher, n := newTestDispatcher()
	n.err = errors.New("smtp relay down")

	event := messaging.OrderEvent{
		EventType: messaging.EventOrderCreated,
		OrderID:   42,
		UserEmail: "customer@example.com",
	}

	err := dispatcher.Handle(context.Background(), marshal(t, event))

	require.Error(t, err)
	// Send failures are transient, never malformed: the consumer must
	// requeue, not drop.
	assert.NotErrorIs(t, err, rabbitmq.ErrMalformed)
	assert.Empty(t, n.sent)
}
