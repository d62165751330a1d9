package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is one requested line within an Order. SKU and Name are
// denormalized copies captured at submission time so later product edits do
// not alter historical orders.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	SKU       string    `json:"sku" db:"sku"`
	Name      string    `json:"name" db:"name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Notes     *string   `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
