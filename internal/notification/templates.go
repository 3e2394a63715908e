package notification

import (
	"fmt"
	"strings"

	"github.com/example/redshop/internal/messaging"
)

// statusMessages maps recognized statuses to their canned copy. Anything
// else falls back to a generic line in buildStatusUpdate.
var statusMessages = map[string]string{
	"confirmed": "Your order has been confirmed and is being prepared.",
	"shipped":   "Your order has been shipped! It should arrive soon.",
	"delivered": "Your order has been delivered. Thank you for shopping with us!",
	"cancelled": "Your order has been cancelled.",
}

func buildOrderConfirmation(event messaging.OrderEvent) (subject, body string) {
	subject = fmt.Sprintf("Order Confirmation - Order #%d", event.OrderID)

	lines := make([]string, 0, len(event.Items))
	for _, item := range event.Items {
		lines = append(lines, fmt.Sprintf("- %s x%d - $%.2f", item.ProductName, item.Quantity, item.Subtotal))
	}

	body = fmt.Sprintf(`Dear Customer,

Thank you for your order!

Order Details:
Order ID: #%d
Total Amount: $%.2f

Items:
%s

Your order is being processed and you will receive another email when it ships.

Thank you for shopping with Red Shopping!

Best regards,
The Red Shopping Team
`, event.OrderID, event.Total, strings.Join(lines, "\n"))
	return subject, body
}

func buildOrderCancelled(event messaging.OrderEvent) (subject, body string) {
	subject = fmt.Sprintf("Order Cancelled - Order #%d", event.OrderID)
	body = fmt.Sprintf(`Dear Customer,

Your order has been cancelled as requested.

Order Details:
Order ID: #%d
Total Amount: $%.2f

If you did not request this cancellation, please contact our support team immediately.

Best regards,
The Red Shopping Team
`, event.OrderID, event.Total)
	return subject, body
}

func buildStatusUpdate(event messaging.OrderEvent) (subject, body string) {
	subject = fmt.Sprintf("Order Update - Order #%d", event.OrderID)

	message, ok := statusMessages[event.Status]
	if !ok {
		message = fmt.Sprintf("Your order status has been updated to: %s", event.Status)
	}

	body = fmt.Sprintf(`Dear Customer,

Order Status Update:

Order ID: #%d
New Status: %s

%s

Track your order anytime by logging into your account.

Best regards,
The Red Shopping Team
`, event.OrderID, strings.ToUpper(event.Status), message)
	return subject, body
}
