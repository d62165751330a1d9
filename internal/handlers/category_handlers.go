package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"indumart/internal/common"
	"indumart/internal/models"
	"indumart/internal/repositories"
)

// CategoryHandlers handles HTTP requests for categories. Categories are
// simple enough that the handlers talk to the repository directly.
type CategoryHandlers struct {
	categoryRepo repositories.CategoryRepository
}

// NewCategoryHandlers creates a new category handlers instance
func NewCategoryHandlers(categoryRepo repositories.CategoryRepository) *CategoryHandlers {
	return &CategoryHandlers{
		categoryRepo: categoryRepo,
	}
}

type categoryRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}

// ListCategories handles GET /categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset := 100, 0
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			offset = o
		}
	}

	categories, err := h.categoryRepo.List(ctx, limit, offset)
	if err != nil {
		log.Printf("ERROR: list categories failed: %v", err)
		return common.SendServerError(c, "Failed to retrieve categories")
	}
	if categories == nil {
		categories = []*models.Category{}
	}

	return c.JSON(http.StatusOK, map[string]any{"categories": categories})
}

// CreateCategory handles POST /admin/categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, []common.FieldError{{Field: "name", Message: err.Error()}})
	}
	if req.Slug == "" {
		req.Slug = slugify(req.Name)
	}

	category := &models.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := h.categoryRepo.Create(ctx, category); err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			return common.SendValidationError(c, verr.Fields)
		}
		log.Printf("ERROR: create category failed: %v", err)
		return common.SendServerError(c, "Failed to create category")
	}

	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /admin/categories/:id
func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	categoryID, err := common.ValidateUUID(c.Param("id"), "category_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		log.Printf("ERROR: get category failed: %v", err)
		return common.SendServerError(c, "Failed to retrieve category")
	}
	if existing == nil {
		return common.SendNotFoundError(c, "category")
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Name != "" {
		existing.Name = strings.TrimSpace(req.Name)
	}
	if req.Slug != "" {
		existing.Slug = req.Slug
	}
	if req.Description != nil {
		existing.Description = req.Description
	}

	if err := h.categoryRepo.Update(ctx, existing); err != nil {
		var conflict *common.VersionConflictError
		if errors.As(err, &conflict) {
			return common.SendConflictError(c, conflict.Error())
		}
		log.Printf("ERROR: update category failed: %v", err)
		return common.SendServerError(c, "Failed to update category")
	}

	return c.JSON(http.StatusOK, existing)
}

// DeleteCategory handles DELETE /admin/categories/:id
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	categoryID, err := common.ValidateUUID(c.Param("id"), "category_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.categoryRepo.Delete(ctx, categoryID); err != nil {
		log.Printf("ERROR: delete category failed: %v", err)
		return common.SendServerError(c, "Failed to delete category")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Category deleted successfully",
	})
}
