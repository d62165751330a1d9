package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"indumart/internal/common"
	"indumart/internal/models"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)
	ListRecentlyUpdated(ctx context.Context, since time.Time, limit int) ([]*models.Product, error)
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, category_id, sku, name, brand, description, in_stock, stock_quantity, created_at, updated_at`

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, category_id, sku, name, brand, description, in_stock, stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.CategoryID, product.SKU, product.Name, product.Brand, product.Description, product.InStock, product.StockQuantity)
	return err
}

func (r *productRepo) scanProduct(row pgx.Row) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(&product.ID, &product.CategoryID, &product.SKU, &product.Name, &product.Brand, &product.Description, &product.InStock, &product.StockQuantity, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return product, nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanProduct(r.db.QueryRow(ctx, query, id))
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	return r.scanProduct(r.db.QueryRow(ctx, query, sku))
}

// Update requires product.UpdatedAt to match the stored row, so concurrent
// admin edits conflict instead of last-write-winning.
func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET category_id = $1, sku = $2, name = $3, brand = $4, description = $5, in_stock = $6, stock_quantity = $7, updated_at = NOW()
		WHERE id = $8 AND updated_at = $9
	`
	tag, err := r.db.Exec(ctx, query, product.CategoryID, product.SKU, product.Name, product.Brand, product.Description, product.InStock, product.StockQuantity, product.ID, product.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &common.VersionConflictError{Resource: "product"}
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryProducts(ctx, query, limit, offset)
}

// Search builds a filtered catalog query. All fragments are parameterized;
// sort fields are allow-listed.
func (r *productRepo) Search(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	n := 0

	if filter.Query != "" {
		n++
		query += fmt.Sprintf(` AND (name ILIKE $%d OR sku ILIKE $%d OR COALESCE(brand, '') ILIKE $%d)`, n, n, n)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.CategoryID != nil {
		n++
		query += fmt.Sprintf(` AND category_id = $%d`, n)
		args = append(args, *filter.CategoryID)
	}
	if filter.InStock != nil {
		n++
		query += fmt.Sprintf(` AND in_stock = $%d`, n)
		args = append(args, *filter.InStock)
	}

	validSortFields := map[string]bool{"name": true, "sku": true, "created_at": true}
	sortField := "name"
	if validSortFields[filter.SortBy] {
		sortField = filter.SortBy
	}
	sortOrder := "ASC"
	if strings.ToLower(filter.SortOrder) == "desc" {
		sortOrder = "DESC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	n++
	query += fmt.Sprintf(` LIMIT $%d`, n)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(` OFFSET $%d`, n)
		args = append(args, filter.Offset)
	}

	return r.queryProducts(ctx, query, args...)
}

func (r *productRepo) ListRecentlyUpdated(ctx context.Context, since time.Time, limit int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE updated_at >= $1
		ORDER BY updated_at DESC
		LIMIT $2
	`
	return r.queryProducts(ctx, query, since, limit)
}

func (r *productRepo) queryProducts(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.CategoryID, &product.SKU, &product.Name, &product.Brand, &product.Description, &product.InStock, &product.StockQuantity, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
