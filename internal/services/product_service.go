package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"indumart/internal/caching"
	"indumart/internal/common"
	"indumart/internal/models"
	"indumart/internal/repositories"
)

const productCacheTTL = 10 * time.Minute

// ProductServiceInterface defines the interface for catalog operations
type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	SearchProducts(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)
	WarmCache(ctx context.Context, since time.Time, limit int) (int, error)
}

type productService struct {
	productRepo repositories.ProductRepository
	cacheSvc    caching.CacheService
}

// NewProductService creates a new product service instance
func NewProductService(productRepo repositories.ProductRepository, cacheSvc caching.CacheService) ProductServiceInterface {
	return &productService{
		productRepo: productRepo,
		cacheSvc:    cacheSvc,
	}
}

func (s *productService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := common.ValidateRequiredString(product.SKU, "sku"); err != nil {
		return &common.ValidationError{Fields: []common.FieldError{{Field: "sku", Message: err.Error()}}}
	}
	if err := common.ValidateRequiredString(product.Name, "name"); err != nil {
		return &common.ValidationError{Fields: []common.FieldError{{Field: "name", Message: err.Error()}}}
	}
	if product.StockQuantity != nil && *product.StockQuantity < 0 {
		return &common.ValidationError{Fields: []common.FieldError{{Field: "stock_quantity", Message: "must not be negative"}}}
	}

	existing, err := s.productRepo.GetBySKU(ctx, product.SKU)
	if err != nil {
		return fmt.Errorf("check sku uniqueness: %w", err)
	}
	if existing != nil {
		return &common.ValidationError{Fields: []common.FieldError{{Field: "sku", Message: "sku already exists"}}}
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return s.productRepo.Create(ctx, product)
}

// GetProductByID reads through the cache
func (s *productService) GetProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	cached, err := s.cacheSvc.GetProduct(ctx, productID)
	if err != nil {
		log.Printf("WARN: product cache read failed: %v", err)
	}
	if cached != nil {
		return cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil || product == nil {
		return product, err
	}
	if err := s.cacheSvc.SetProduct(ctx, product, productCacheTTL); err != nil {
		log.Printf("WARN: product cache write failed: %v", err)
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, product *models.Product) error {
	existing, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return &common.ProductNotFoundError{ProductID: product.ID.String()}
	}
	if product.StockQuantity != nil && *product.StockQuantity < 0 {
		return &common.ValidationError{Fields: []common.FieldError{{Field: "stock_quantity", Message: "must not be negative"}}}
	}

	// The update is conditional on the row still matching this read; a
	// concurrent edit surfaces as a VersionConflictError from the repo.
	product.UpdatedAt = existing.UpdatedAt
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	// Stale catalog entries are worse than a cache miss
	if err := s.cacheSvc.DeleteProduct(ctx, product.ID); err != nil {
		log.Printf("WARN: product cache invalidation failed: %v", err)
	}
	return nil
}

func (s *productService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}
	if err := s.cacheSvc.DeleteProduct(ctx, productID); err != nil {
		log.Printf("WARN: product cache invalidation failed: %v", err)
	}
	return nil
}

func (s *productService) SearchProducts(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	return s.productRepo.Search(ctx, filter)
}

// WarmCache preloads recently updated products into the cache. Run from the
// background scheduler.
func (s *productService) WarmCache(ctx context.Context, since time.Time, limit int) (int, error) {
	products, err := s.productRepo.ListRecentlyUpdated(ctx, since, limit)
	if err != nil {
		return 0, err
	}
	warmed := 0
	for _, product := range products {
		if err := s.cacheSvc.SetProduct(ctx, product, productCacheTTL); err != nil {
			log.Printf("WARN: cache warm failed for product %s: %v", product.ID, err)
			continue
		}
		warmed++
	}
	return warmed, nil
}
