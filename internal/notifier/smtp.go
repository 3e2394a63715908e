package notifier

import (
	"fmt"
	"net/smtp"

	"github.com/pkg/errors"

	"github.com/example/redshop/internal/config"
)

// SMTPNotifier delivers notifications through an SMTP relay. A send failure
// here is what triggers the requeue path in the event consumer.
type SMTPNotifier struct {
	addr string
	from string
}

// NewSMTPNotifier creates a notifier against the configured relay.
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
	}
}

// Send delivers one plain-text message.
func (n *SMTPNotifier) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		n.from, to, subject, body)
	if err := smtp.SendMail(n.addr, nil, n.from, []string{to}, []byte(msg)); err != nil {
		return errors.Wrapf(err, "send mail to %s", to)
	}
	return nil
}
