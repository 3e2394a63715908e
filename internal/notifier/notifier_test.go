package notifier

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_AlwaysSucceedsAndRecords(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	n := NewLogNotifier(logrus.NewEntry(log))

	err := n.Send("customer@example.com", "Order Confirmation - Order #1", "Dear Customer,")
	require.NoError(t, err)
	err = n.Send("other@example.com", "Order Update - Order #2", "Dear Customer,")
	require.NoError(t, err)

	sent := n.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "customer@example.com", sent[0].To)
	assert.Equal(t, "Order Confirmation - Order #1", sent[0].Subject)
	assert.False(t, sent[0].SentAt.IsZero())
	assert.Equal(t, "other@example.com", sent[1].To)
}
