// Package notifier provides the pluggable delivery channel for customer
// notifications. The implementation is chosen once at startup and injected;
// sending logic never branches on the runtime environment.
package notifier

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier sends one notification to one address.
type Notifier interface {
	Send(to, subject, body string) error
}

// Notification is a record of a delivered message.
type Notification struct {
	To      string
	Subject string
	Body    string
	SentAt  time.Time
}

// LogNotifier records and logs notifications instead of delivering them.
// It always reports success. Used outside production.
type LogNotifier struct {
	log *logrus.Entry

	mu   sync.Mutex
	sent []Notification
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(log *logrus.Entry) *LogNotifier {
	return &LogNotifier{log: log}
}

// Send records the notification and prints it.
func (n *LogNotifier) Send(to, subject, body string) error {
	record := Notification{To: to, Subject: subject, Body: body, SentAt: time.Now().UTC()}

	n.mu.Lock()
	n.sent = append(n.sent, record)
	n.mu.Unlock()

	n.log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("email notification\n" + body)
	return nil
}

// Sent returns a copy of every notification recorded so far.
func (n *LogNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}
