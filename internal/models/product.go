package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductSearchFilter holds search and filter criteria for catalog queries
type ProductSearchFilter struct {
	Query      string     `json:"query,omitempty"`       // Full-text search across name, sku, brand
	CategoryID *uuid.UUID `json:"category_id,omitempty"` // Filter by category
	InStock    *bool      `json:"in_stock,omitempty"`    // Stock availability filter
	SortBy     string     `json:"sort_by,omitempty"`     // Sort field: name, sku, created_at
	SortOrder  string     `json:"sort_order,omitempty"`  // Sort order: asc, desc
	Limit      int        `json:"limit,omitempty"`       // Page size (default: 50)
	Offset     int        `json:"offset,omitempty"`      // Page offset
}

// Product is a catalog entry. StockQuantity is nil for products whose stock
// is not tracked; InStock is the authoritative availability flag either way.
type Product struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	CategoryID    *uuid.UUID `json:"category_id" db:"category_id"`
	SKU           string     `json:"sku" db:"sku"`
	Name          string     `json:"name" db:"name"`
	Brand         *string    `json:"brand" db:"brand"`
	Description   *string    `json:"description" db:"description"`
	InStock       bool       `json:"in_stock" db:"in_stock"`
	StockQuantity *int       `json:"stock_quantity" db:"stock_quantity"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}
