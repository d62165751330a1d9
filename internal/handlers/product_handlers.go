package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"indumart/internal/common"
	"indumart/internal/models"
	"indumart/internal/services"
)

// ProductHandlers handles HTTP requests for the catalog
type ProductHandlers struct {
	productService services.ProductServiceInterface
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductServiceInterface) *ProductHandlers {
	return &ProductHandlers{
		productService: productService,
	}
}

type productRequest struct {
	CategoryID    *string `json:"category_id"`
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Brand         *string `json:"brand"`
	Description   *string `json:"description"`
	InStock       bool    `json:"in_stock"`
	StockQuantity *int    `json:"stock_quantity"`
}

func (h *ProductHandlers) bindProduct(c echo.Context, product *models.Product) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if req.CategoryID != nil && common.SafeString(req.CategoryID) != "" {
		categoryID, err := common.ValidateUUID(*req.CategoryID, "category_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		product.CategoryID = &categoryID
	}
	product.SKU = req.SKU
	product.Name = req.Name
	product.Brand = req.Brand
	product.Description = req.Description
	product.InStock = req.InStock
	product.StockQuantity = req.StockQuantity
	return nil
}

// ListProducts handles GET /products, the public catalog with filters
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	filter := &models.ProductSearchFilter{
		Query:     c.QueryParam("q"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}
	if categoryParam := c.QueryParam("category_id"); categoryParam != "" {
		categoryID, err := common.ValidateUUID(categoryParam, "category_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.CategoryID = &categoryID
	}
	if inStockParam := c.QueryParam("in_stock"); inStockParam != "" {
		inStock, err := strconv.ParseBool(inStockParam)
		if err != nil {
			return common.SendClientError(c, "in_stock must be true or false")
		}
		filter.InStock = &inStock
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	products, err := h.productService.SearchProducts(ctx, filter)
	if err != nil {
		log.Printf("ERROR: product search failed: %v", err)
		return common.SendServerError(c, "Failed to retrieve products")
	}
	if products == nil {
		products = []*models.Product{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"products": products,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("id"), "product_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.productService.GetProductByID(ctx, productID)
	if err != nil {
		log.Printf("ERROR: get product failed: %v", err)
		return common.SendServerError(c, "Failed to retrieve product")
	}
	if product == nil {
		return common.SendNotFoundError(c, "product")
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /admin/products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product := &models.Product{ID: uuid.New()}
	if err := h.bindProduct(c, product); err != nil {
		return err
	}

	if err := h.productService.CreateProduct(ctx, product); err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			return common.SendValidationError(c, verr.Fields)
		}
		log.Printf("ERROR: create product failed: %v", err)
		return common.SendServerError(c, "Failed to create product")
	}

	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /admin/products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("id"), "product_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product := &models.Product{ID: productID}
	if err := h.bindProduct(c, product); err != nil {
		return err
	}

	if err := h.productService.UpdateProduct(ctx, product); err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			return common.SendValidationError(c, verr.Fields)
		}
		var notFound *common.ProductNotFoundError
		if errors.As(err, &notFound) {
			return common.SendNotFoundError(c, "product")
		}
		var conflict *common.VersionConflictError
		if errors.As(err, &conflict) {
			return common.SendConflictError(c, conflict.Error())
		}
		log.Printf("ERROR: update product failed: %v", err)
		return common.SendServerError(c, "Failed to update product")
	}

	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := common.ValidateUUID(c.Param("id"), "product_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.productService.DeleteProduct(ctx, productID); err != nil {
		log.Printf("ERROR: delete product failed: %v", err)
		return common.SendServerError(c, "Failed to delete product")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Product deleted successfully",
	})
}
