package common

import (
	"fmt"
	"strings"
)

// FieldError is one violated validation rule on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated rule of a submission, not just the
// first, so the client can surface the whole list.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ProductNotFoundError signals a line item referencing a product that does
// not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// OutOfStockError signals a line item whose product has its in-stock flag
// cleared.
type OutOfStockError struct {
	SKU string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s is out of stock", e.SKU)
}

// SkuMismatchError signals a submitted SKU that does not match the SKU of
// the referenced product.
type SkuMismatchError struct {
	ProductID string
	Expected  string
	Submitted string
}

func (e *SkuMismatchError) Error() string {
	return fmt.Sprintf("sku mismatch for product %s: expected %s, got %s", e.ProductID, e.Expected, e.Submitted)
}

// VersionConflictError signals a write that lost to a concurrent edit of the
// same row: the precondition read before the update no longer held.
type VersionConflictError struct {
	Resource string
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s was modified concurrently, reload and retry", e.Resource)
}

// InsufficientStockError signals a requested quantity above the tracked
// stock quantity.
type InsufficientStockError struct {
	SKU       string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", e.SKU, e.Available, e.Requested)
}
