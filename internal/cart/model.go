package cart

import (
	"time"

	"github.com/gofrs/uuid"

	"github.com/ndthanh/storefront/internal/catalog"
)

type Item struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// View is a cart item joined with its product and the price the item would
// fetch right now, promotions included.
type View struct {
	Item       Item            `json:"item"`
	Product    catalog.Product `json:"product"`
	FinalPrice float64         `json:"final_price"`
}
