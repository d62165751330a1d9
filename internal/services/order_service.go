package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"indumart/internal/caching"
	"indumart/internal/common"
	"indumart/internal/models"
	"indumart/internal/repositories"
)

// IdempotencyTTL is how long a cached submission response is replayable.
const IdempotencyTTL = time.Hour

// OrderServiceInterface defines the interface for RFQ order operations
type OrderServiceInterface interface {
	SubmitOrder(ctx context.Context, sub *models.OrderSubmission, idempotencyKey string) (*caching.CachedResponse, error)
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, status *string, notes *string) (*models.Order, error)
}

type orderService struct {
	orderRepo repositories.OrderRepository
	cacheSvc  caching.CacheService
}

// NewOrderService creates a new order service instance
func NewOrderService(orderRepo repositories.OrderRepository, cacheSvc caching.CacheService) OrderServiceInterface {
	return &orderService{
		orderRepo: orderRepo,
		cacheSvc:  cacheSvc,
	}
}

// SubmitOrder runs the full RFQ pipeline: idempotency lookup, validation,
// transactional insert, response caching. The returned CachedResponse is the
// exact payload to send, so a retried submission replays the original
// response byte for byte.
//
// When the caller supplies no idempotency key the request is processed
// without de-duplication. Generating a key server-side would defeat the
// point of client-driven idempotency, so we deliberately don't.
func (s *orderService) SubmitOrder(ctx context.Context, sub *models.OrderSubmission, idempotencyKey string) (*caching.CachedResponse, error) {
	if idempotencyKey != "" {
		cached, err := s.cacheSvc.GetIdempotencyRecord(ctx, idempotencyKey)
		if err != nil {
			// The cache is a de-duplication aid, not a dependency; a broken
			// lookup must not block submissions.
			log.Printf("WARN: idempotency lookup failed for key %s: %v", idempotencyKey, err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	if verr := ValidateOrderSubmission(sub); verr != nil {
		return nil, verr
	}

	order := &models.Order{
		ID:             uuid.New(),
		CompanyName:    sub.CompanyName,
		ContactName:    sub.ContactName,
		Email:          sub.Email,
		Phone:          sub.Phone,
		CompanyAddress: sub.CompanyAddress,
		Notes:          sub.Notes,
		Status:         models.OrderStatusPending,
	}
	if sub.Status != nil {
		order.Status = *sub.Status
	}
	for _, item := range sub.Items {
		productID, _ := uuid.Parse(item.ProductID) // validated above
		order.Items = append(order.Items, &models.OrderItem{
			ID:        uuid.New(),
			ProductID: productID,
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		})
	}

	// Inventory checks and inserts run inside one transaction; a failing
	// item rolls everything back and the domain error propagates here.
	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{"order": order})
	if err != nil {
		return nil, fmt.Errorf("marshal order response: %w", err)
	}
	resp := &caching.CachedResponse{StatusCode: 201, Body: body}

	if idempotencyKey != "" {
		if err := s.cacheSvc.PutIdempotencyRecord(ctx, idempotencyKey, resp, IdempotencyTTL); err != nil {
			log.Printf("WARN: failed to cache idempotency record for key %s: %v", idempotencyKey, err)
		}
	}
	return resp, nil
}

// GetOrderByID retrieves an order with its items, or nil when absent
func (s *orderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

// ListOrders lists orders with their items, newest first
func (s *orderService) ListOrders(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, error) {
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if filter.Status != nil {
		if err := common.ValidateOrderStatus(*filter.Status); err != nil {
			return nil, &common.ValidationError{Fields: []common.FieldError{{Field: "status", Message: err.Error()}}}
		}
	}
	return s.orderRepo.List(ctx, filter)
}

// UpdateOrder applies an admin status/notes edit. Transitions are
// deliberately unrestricted beyond enum membership: any status may be set
// from any other. The update carries the updated_at read here as a
// precondition, so an edit racing another admin's returns a version conflict
// instead of overwriting it.
func (s *orderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, status *string, notes *string) (*models.Order, error) {
	if status == nil && notes == nil {
		return nil, &common.ValidationError{Fields: []common.FieldError{{Field: "status", Message: "at least one of status or notes is required"}}}
	}
	if status != nil {
		if err := common.ValidateOrderStatus(*status); err != nil {
			return nil, &common.ValidationError{Fields: []common.FieldError{{Field: "status", Message: err.Error()}}}
		}
	}

	existing, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	newStatus := existing.Status
	if status != nil {
		newStatus = *status
	}
	if err := s.orderRepo.UpdateStatusNotes(ctx, orderID, newStatus, notes, existing.UpdatedAt); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, orderID)
}

// ValidateOrderSubmission schema-checks a raw RFQ payload, normalizing
// trimmed fields in place. Every violated rule is reported, not just the
// first.
func ValidateOrderSubmission(sub *models.OrderSubmission) *common.ValidationError {
	var fields []common.FieldError

	sub.CompanyName = strings.TrimSpace(sub.CompanyName)
	if utf8.RuneCountInString(sub.CompanyName) < 2 {
		fields = append(fields, common.FieldError{Field: "companyName", Message: "must be at least 2 characters"})
	}
	sub.ContactName = strings.TrimSpace(sub.ContactName)
	if utf8.RuneCountInString(sub.ContactName) < 2 {
		fields = append(fields, common.FieldError{Field: "contactName", Message: "must be at least 2 characters"})
	}

	email, ok := common.NormalizeEmail(sub.Email)
	if !ok {
		fields = append(fields, common.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	sub.Email = email

	sub.Phone = strings.TrimSpace(sub.Phone)
	if utf8.RuneCountInString(sub.Phone) < 10 {
		fields = append(fields, common.FieldError{Field: "phone", Message: "must be at least 10 characters"})
	}

	if sub.Status != nil {
		if err := common.ValidateOrderStatus(*sub.Status); err != nil {
			fields = append(fields, common.FieldError{Field: "status", Message: err.Error()})
		}
	}

	if len(sub.Items) == 0 {
		fields = append(fields, common.FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, item := range sub.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if _, err := common.ValidateUUID(item.ProductID, "productId"); err != nil {
			fields = append(fields, common.FieldError{Field: prefix + "productId", Message: err.Error()})
		}
		if err := common.ValidateRequiredString(item.SKU, "sku"); err != nil {
			fields = append(fields, common.FieldError{Field: prefix + "sku", Message: err.Error()})
		}
		if err := common.ValidateRequiredString(item.Name, "name"); err != nil {
			fields = append(fields, common.FieldError{Field: prefix + "name", Message: err.Error()})
		}
		if item.Quantity <= 0 {
			fields = append(fields, common.FieldError{Field: prefix + "quantity", Message: "must be a positive integer"})
		}
	}

	if len(fields) > 0 {
		return &common.ValidationError{Fields: fields}
	}
	return nil
}
