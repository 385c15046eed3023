package catalog

import (
	"time"

	"github.com/gofrs/uuid"
)

type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product is a catalog entry. Available is maintained alongside StockQuantity:
// it drops to false when stock runs out at checkout and flips back to true
// when a cancellation restores stock.
type Product struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description,omitempty" db:"description"`
	Price         float64   `json:"price" db:"price"`
	CategoryID    uuid.UUID `json:"category_id" db:"category_id"`
	StockQuantity int       `json:"stock_quantity" db:"stock_quantity"`
	Available     bool      `json:"available" db:"available"`
	ImageURL      string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
