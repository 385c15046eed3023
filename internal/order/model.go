package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusAwaitingConfirmation Status = "AWAITING_CONFIRMATION"
	StatusPreparing            Status = "PREPARING"
	StatusShipping             Status = "SHIPPING"
	StatusDelivered            Status = "DELIVERED"
	StatusCompleted            Status = "COMPLETED"
	StatusPendingCancellation  Status = "PENDING_CANCELLATION"
	StatusCancelled            Status = "CANCELLED"
	StatusPendingReturn        Status = "PENDING_RETURN"
	StatusReturned             Status = "RETURNED"
)

func (s Status) String() string {
	return string(s)
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "COD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
)

func (m PaymentMethod) String() string {
	return string(m)
}

// Line is a single position of an order. UnitPrice is captured at checkout
// and never follows later catalog price changes, so historical orders stay
// immutable. Reviewed guards the one-review-per-line rule.
type Line struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
	Reviewed  bool      `json:"reviewed" db:"reviewed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Order is never physically deleted; cancellation is a status, not a removal.
type Order struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	Code              string        `json:"code" db:"code"`
	UserID            uuid.UUID     `json:"user_id" db:"user_id"`
	Status            Status        `json:"status" db:"status"`
	PaymentMethod     PaymentMethod `json:"payment_method" db:"payment_method"`
	Paid              bool          `json:"paid" db:"paid"`
	Lines             []Line        `json:"lines" db:"-"`
	TotalAmount       float64       `json:"total_amount" db:"total_amount"`
	CancelReason      string        `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CancelRequestedBy uuid.UUID     `json:"cancel_requested_by,omitempty" db:"cancel_requested_by"`
	CancelRequestedAt *time.Time    `json:"cancel_requested_at,omitempty" db:"cancel_requested_at"`
	ReturnReason      string        `json:"return_reason,omitempty" db:"return_reason"`
	ReturnRequestedAt *time.Time    `json:"return_requested_at,omitempty" db:"return_requested_at"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}
