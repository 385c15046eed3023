package order

import "fmt"

// Presentation lookups for the status variants, used by the HTTP layer and
// the notification texts. Kept as tables so adding a status cannot silently
// fall through to a neighbouring case.

var statusLabels = map[Status]string{
	StatusAwaitingConfirmation: "Awaiting confirmation",
	StatusPreparing:            "Preparing",
	StatusShipping:             "Shipping",
	StatusDelivered:            "Delivered",
	StatusCompleted:            "Completed",
	StatusPendingCancellation:  "Pending cancellation",
	StatusCancelled:            "Cancelled",
	StatusPendingReturn:        "Pending return",
	StatusReturned:             "Returned",
}

var statusColors = map[Status]string{
	StatusAwaitingConfirmation: "warning",
	StatusPreparing:            "info",
	StatusShipping:             "primary",
	StatusDelivered:            "secondary",
	StatusCompleted:            "success",
	StatusPendingCancellation:  "warning",
	StatusCancelled:            "danger",
	StatusPendingReturn:        "primary",
	StatusReturned:             "dark",
}

var statusNotifications = map[Status]string{
	StatusAwaitingConfirmation: "Order %s has been placed and is awaiting confirmation.",
	StatusPreparing:            "Order %s has been confirmed. The seller is preparing your items.",
	StatusShipping:             "Order %s is on its way to you.",
	StatusDelivered:            "Order %s has been delivered.",
	StatusCompleted:            "Order %s is complete. Thank you for shopping with us!",
	StatusPendingCancellation:  "A cancellation has been requested for order %s and is awaiting review.",
	StatusCancelled:            "Order %s has been cancelled.",
	StatusPendingReturn:        "A return has been requested for order %s and is awaiting review.",
	StatusReturned:             "The return for order %s has been accepted.",
}

// Label returns the human-readable name of the status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// BadgeColor returns the UI badge color class for the status.
func (s Status) BadgeColor() string {
	if color, ok := statusColors[s]; ok {
		return color
	}
	return "light"
}

// NotificationMessage renders the customer-facing message for reaching this
// status on the order identified by code.
func (s Status) NotificationMessage(code string) string {
	format, ok := statusNotifications[s]
	if !ok {
		format = "Order %s has an update."
	}
	return fmt.Sprintf(format, code)
}
