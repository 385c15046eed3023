package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"

	"github.com/ndthanh/storefront/internal/catalog"
)

var (
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrPreconditionFailed = errors.New("order operation precondition failed")
	ErrAlreadyPaid        = errors.New("order is already paid")
	ErrNotBankTransfer    = errors.New("payment confirmation only applies to bank transfer orders")
)

// ErrNotOwner still matches ErrPreconditionFailed via errors.Is, but carries
// the message callers show when the requester does not own the order.
var ErrNotOwner = fmt.Errorf("%w: order not found or not owned by requester", ErrPreconditionFailed)

// advanceNext is the happy path, one admin step at a time. Side-branch and
// terminal states have no entry on purpose.
var advanceNext = map[Status]Status{
	StatusAwaitingConfirmation: StatusPreparing,
	StatusPreparing:            StatusShipping,
	StatusShipping:             StatusDelivered,
	StatusDelivered:            StatusCompleted,
}

// Notification is a message for the order's owner, to be delivered by the
// notification sink after the transition is persisted.
type Notification struct {
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Transition is the outcome of a lifecycle operation over a snapshot of the
// order and the products its lines reference. Nothing is persisted here: the
// caller writes Order and Products back and hands Notifications to the sink.
// PrevStatus lets the storage layer guard against a concurrent transition of
// the same order.
type Transition struct {
	Order         Order
	PrevStatus    Status
	Products      []catalog.Product
	Notifications []Notification
}

func notifyStatus(o Order, now time.Time) Notification {
	return Notification{
		UserID:    o.UserID,
		Message:   o.Status.NotificationMessage(o.Code),
		CreatedAt: now,
	}
}

// restoreStock returns the products with the order's reserved quantities
// handed back. Lines whose product is missing from the snapshot are skipped;
// the order history must survive a deleted product.
func restoreStock(lines []Line, products []catalog.Product) []catalog.Product {
	index := make(map[uuid.UUID]int, len(products))
	restored := make([]catalog.Product, len(products))
	for i, p := range products {
		index[p.ID] = i
		restored[i] = p
	}

	for _, line := range lines {
		i, ok := index[line.ProductID]
		if !ok {
			continue
		}
		restored[i].StockQuantity += line.Quantity
		if restored[i].StockQuantity > 0 && !restored[i].Available {
			restored[i].Available = true
		}
	}

	return restored
}

// Advance moves the order one step along the happy path
// (AwaitingConfirmation → Preparing → Shipping → Delivered → Completed).
// Terminal and side-branch states are rejected explicitly.
func Advance(o Order, now time.Time) (Transition, error) {
	next, ok := advanceNext[o.Status]
	if !ok {
		return Transition{}, fmt.Errorf("%w: cannot advance order from %s", ErrInvalidTransition, o.Status)
	}

	prev := o.Status
	o.Status = next
	o.UpdatedAt = now

	return Transition{
		Order:         o,
		PrevStatus:    prev,
		Notifications: []Notification{notifyStatus(o, now)},
	}, nil
}

// Cancel is the unconditional admin cancellation: any state short of a
// terminal one goes to Cancelled, and reserved stock is handed back.
func Cancel(o Order, products []catalog.Product, now time.Time) (Transition, error) {
	if o.Status.Terminal() {
		return Transition{}, fmt.Errorf("%w: cannot cancel order in state %s", ErrInvalidTransition, o.Status)
	}

	prev := o.Status
	o.Status = StatusCancelled
	o.UpdatedAt = now

	return Transition{
		Order:         o,
		PrevStatus:    prev,
		Products:      restoreStock(o.Lines, products),
		Notifications: []Notification{notifyStatus(o, now)},
	}, nil
}

// RequestCancellation is the customer-initiated path. From
// AwaitingConfirmation the order is cancelled on the spot, stock included;
// from Preparing it parks in PendingCancellation until an admin decides.
// Anything else is rejected.
func RequestCancellation(o Order, products []catalog.Product, requesterID uuid.UUID, reason string, now time.Time) (Transition, error) {
	if o.UserID != requesterID {
		return Transition{}, ErrNotOwner
	}
	if o.Status != StatusAwaitingConfirmation && o.Status != StatusPreparing {
		return Transition{}, fmt.Errorf("%w: cancellation can only be requested while awaiting confirmation or preparing, order is %s", ErrPreconditionFailed, o.Status)
	}

	prev := o.Status
	o.CancelReason = reason
	o.CancelRequestedBy = requesterID
	requestedAt := now
	o.CancelRequestedAt = &requestedAt
	o.UpdatedAt = now

	if prev == StatusAwaitingConfirmation {
		o.Status = StatusCancelled
		return Transition{
			Order:         o,
			PrevStatus:    prev,
			Products:      restoreStock(o.Lines, products),
			Notifications: []Notification{notifyStatus(o, now)},
		}, nil
	}

	o.Status = StatusPendingCancellation
	return Transition{
		Order:         o,
		PrevStatus:    prev,
		Notifications: []Notification{notifyStatus(o, now)},
	}, nil
}

// ApproveCancellation resolves a pending cancellation in the customer's
// favour: the order is cancelled and stock restored.
func ApproveCancellation(o Order, products []catalog.Product, now time.Time) (Transition, error) {
	if o.Status != StatusPendingCancellation {
		return Transition{}, fmt.Errorf("%w: no pending cancellation on order in state %s", ErrInvalidTransition, o.Status)
	}

	prev := o.Status
	o.Status = StatusCancelled
	o.UpdatedAt = now

	return Transition{
		Order:      o,
		PrevStatus: prev,
		Products:   restoreStock(o.Lines, products),
		Notifications: []Notification{{
			UserID:    o.UserID,
			Message:   fmt.Sprintf("The cancellation request for order %s has been approved.", o.Code),
			CreatedAt: now,
		}},
	}, nil
}

// RejectCancellation sends a pending cancellation back to Preparing.
func RejectCancellation(o Order, now time.Time) (Transition, error) {
	if o.Status != StatusPendingCancellation {
		return Transition{}, fmt.Errorf("%w: no pending cancellation on order in state %s", ErrInvalidTransition, o.Status)
	}

	prev := o.Status
	o.Status = StatusPreparing
	o.UpdatedAt = now

	return Transition{
		Order:      o,
		PrevStatus: prev,
		Notifications: []Notification{{
			UserID:    o.UserID,
			Message:   fmt.Sprintf("The cancellation request for order %s has been rejected.", o.Code),
			CreatedAt: now,
		}},
	}, nil
}

// RequestReturn parks a delivered order in PendingReturn with the customer's
// reason on record.
func RequestReturn(o Order, reason string, now time.Time) (Transition, error) {
	if o.Status != StatusDelivered {
		return Transition{}, fmt.Errorf("%w: returns can only be requested for delivered orders, order is %s", ErrInvalidTransition, o.Status)
	}

	prev := o.Status
	o.Status = StatusPendingReturn
	o.ReturnReason = reason
	requestedAt := now
	o.ReturnRequestedAt = &requestedAt
	o.UpdatedAt = now

	return Transition{
		Order:         o,
		PrevStatus:    prev,
		Notifications: []Notification{notifyStatus(o, now)},
	}, nil
}

// AcceptReturn closes out a pending return.
func AcceptReturn(o Order, now time.Time) (Transition, error) {
	if o.Status != StatusPendingReturn {
		return Transition{}, fmt.Errorf("%w: no pending return on order in state %s", ErrInvalidTransition, o.Status)
	}

	prev := o.Status
	o.Status = StatusReturned
	o.UpdatedAt = now

	return Transition{
		Order:         o,
		PrevStatus:    prev,
		Notifications: []Notification{notifyStatus(o, now)},
	}, nil
}

// ConfirmPayment marks an unpaid bank transfer order as paid. Confirming an
// already-paid order is an error, not a silent success, so double submissions
// are detectable.
func ConfirmPayment(o Order, now time.Time) (Transition, error) {
	if o.Paid {
		return Transition{}, fmt.Errorf("%w: order %s", ErrAlreadyPaid, o.Code)
	}
	if o.PaymentMethod != PaymentBankTransfer {
		return Transition{}, fmt.Errorf("%w: order %s uses %s", ErrNotBankTransfer, o.Code, o.PaymentMethod)
	}

	prev := o.Status
	o.Paid = true
	o.UpdatedAt = now

	return Transition{
		Order:      o,
		PrevStatus: prev,
		Notifications: []Notification{{
			UserID:    o.UserID,
			Message:   fmt.Sprintf("Payment for order %s has been confirmed.", o.Code),
			CreatedAt: now,
		}},
	}, nil
}
