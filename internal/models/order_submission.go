package models

// OrderSubmission is the raw RFQ payload as posted by the storefront. Field
// names follow the public API contract.
type OrderSubmission struct {
	CompanyName    string                `json:"companyName"`
	ContactName    string                `json:"contactName"`
	Email          string                `json:"email"`
	Phone          string                `json:"phone"`
	CompanyAddress *string               `json:"companyAddress"`
	Notes          *string               `json:"notes"`
	Status         *string               `json:"status"`
	Items          []OrderItemSubmission `json:"items"`
}

// OrderItemSubmission is one requested line in an RFQ payload. SKU and Name
// are submitted by the client and checked against the referenced product.
type OrderItemSubmission struct {
	ProductID string  `json:"productId"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Notes     *string `json:"notes"`
}
