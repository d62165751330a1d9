package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. The lifecycle is permissive: admins may move an order
// between any of these values, only membership is enforced.
const (
	OrderStatusPending  = "pending"
	OrderStatusQuoted   = "quoted"
	OrderStatusApproved = "approved"
	OrderStatusRejected = "rejected"
)

// Order represents one RFQ submission. Items are created atomically with the
// order and are immutable afterwards; only status and notes change.
type Order struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	CompanyName    string       `json:"company_name" db:"company_name"`
	ContactName    string       `json:"contact_name" db:"contact_name"`
	Email          string       `json:"email" db:"email"`
	Phone          string       `json:"phone" db:"phone"`
	CompanyAddress *string      `json:"company_address" db:"company_address"`
	Notes          *string      `json:"notes" db:"notes"`
	Status         string       `json:"status" db:"status"`
	Items          []*OrderItem `json:"items"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// OrderListFilter holds filter criteria for admin order listings
type OrderListFilter struct {
	Status *string `json:"status,omitempty"` // Status filter (pending, quoted, approved, rejected)
	Limit  int     `json:"limit,omitempty"`  // Page size (default: 50)
	Offset int     `json:"offset,omitempty"` // Page offset
}
