package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"indumart/internal/common"
	"indumart/internal/models"
)

type OrderRepository interface {
	CreateWithItems(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, error)
	UpdateStatusNotes(ctx context.Context, id uuid.UUID, status string, notes *string, expectedUpdatedAt time.Time) error
	CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type orderRepo struct {
	db Database
}

func NewOrderRepo(db Database) OrderRepository {
	return &orderRepo{db: db}
}

// CreateWithItems inserts the order header and every line item in one
// transaction. Each referenced product is read FOR UPDATE first and checked
// against the submission; the first failing item aborts the whole
// transaction, so no partial state is ever committed. Stock quantities are
// advisory for RFQs and are not decremented here.
func (r *orderRepo) CreateWithItems(ctx context.Context, order *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, item := range order.Items {
		var (
			sku, name     string
			inStock       bool
			stockQuantity *int
		)
		row := tx.QueryRow(ctx, `
			SELECT sku, name, in_stock, stock_quantity
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, item.ProductID)
		if err := row.Scan(&sku, &name, &inStock, &stockQuantity); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &common.ProductNotFoundError{ProductID: item.ProductID.String()}
			}
			return err
		}

		if !inStock {
			return &common.OutOfStockError{SKU: sku}
		}
		if item.SKU != sku {
			return &common.SkuMismatchError{ProductID: item.ProductID.String(), Expected: sku, Submitted: item.SKU}
		}
		if stockQuantity != nil && *stockQuantity < item.Quantity {
			return &common.InsufficientStockError{SKU: sku, Available: *stockQuantity, Requested: item.Quantity}
		}
	}

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, company_name, contact_name, email, phone, company_address, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, order.ID, order.CompanyName, order.ContactName, order.Email, order.Phone, order.CompanyAddress, order.Notes, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		item.OrderID = order.ID
		item.CreatedAt = now
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, sku, name, quantity, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, item.ID, item.OrderID, item.ProductID, item.SKU, item.Name, item.Quantity, item.Notes, item.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT id, company_name, contact_name, email, phone, company_address, notes, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&order.ID, &order.CompanyName, &order.ContactName, &order.Email, &order.Phone, &order.CompanyAddress, &order.Notes, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items, err := r.itemsForOrders(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	if order.Items == nil {
		order.Items = []*models.OrderItem{}
	}
	return order, nil
}

func (r *orderRepo) List(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, error) {
	query := `
		SELECT id, company_name, contact_name, email, phone, company_address, notes, status, created_at, updated_at
		FROM orders
	`
	args := []any{}
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY created_at DESC`
	args = append(args, filter.Limit, filter.Offset)
	if filter.Status != nil {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	var ids []uuid.UUID
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.CompanyName, &order.ContactName, &order.Email, &order.Phone, &order.CompanyAddress, &order.Notes, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		items, err := r.itemsForOrders(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, order := range orders {
			order.Items = items[order.ID]
			if order.Items == nil {
				order.Items = []*models.OrderItem{}
			}
		}
	}
	return orders, nil
}

func (r *orderRepo) itemsForOrders(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, sku, name, quantity, notes, created_at
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]*models.OrderItem)
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.SKU, &item.Name, &item.Quantity, &item.Notes, &item.CreatedAt); err != nil {
			return nil, err
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	return items, rows.Err()
}

// UpdateStatusNotes applies an admin edit with an optimistic-locking
// precondition: the row must still carry the updated_at the caller read. A
// concurrent edit bumps it, the update matches nothing, and the caller gets
// a conflict instead of silently overwriting.
func (r *orderRepo) UpdateStatusNotes(ctx context.Context, id uuid.UUID, status string, notes *string, expectedUpdatedAt time.Time) error {
	query := `
		UPDATE orders
		SET status = $1, notes = COALESCE($2, notes), updated_at = NOW()
		WHERE id = $3 AND updated_at = $4
	`
	tag, err := r.db.Exec(ctx, query, status, notes, id, expectedUpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &common.VersionConflictError{Resource: "order"}
	}
	return nil
}

func (r *orderRepo) CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE status = $1 AND created_at < $2`
	err := r.db.QueryRow(ctx, query, models.OrderStatusPending, cutoff).Scan(&count)
	return count, err
}
