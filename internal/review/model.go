package review

import (
	"time"

	"github.com/gofrs/uuid"
)

// Review belongs to one order line; the line's reviewed flag enforces the
// one-review-per-line rule.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	LineID    uuid.UUID `json:"line_id" db:"line_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment,omitempty" db:"comment"`
	Reported  bool      `json:"reported" db:"reported"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
