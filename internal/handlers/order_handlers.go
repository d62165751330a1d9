package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"indumart/internal/common"
	"indumart/internal/models"
	"indumart/internal/services"
)

// OrderHandlers handles HTTP requests for RFQ orders
type OrderHandlers struct {
	orderService services.OrderServiceInterface
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderServiceInterface) *OrderHandlers {
	return &OrderHandlers{
		orderService: orderService,
	}
}

// SubmitOrder handles POST /orders, the public RFQ submission endpoint.
// Perimeter middleware (rate limit, CSRF) has already run by the time this
// executes.
func (h *OrderHandlers) SubmitOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var sub models.OrderSubmission
	if err := c.Bind(&sub); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")

	resp, err := h.orderService.SubmitOrder(ctx, &sub, idempotencyKey)
	if err != nil {
		return h.sendSubmitError(c, err)
	}
	return c.JSONBlob(resp.StatusCode, resp.Body)
}

// sendSubmitError translates pipeline errors into client responses. Domain
// errors are expected outcomes and carry their message through; anything
// else is logged in full and reported generically.
func (h *OrderHandlers) sendSubmitError(c echo.Context, err error) error {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		return common.SendValidationError(c, verr.Fields)
	}

	var notFound *common.ProductNotFoundError
	if errors.As(err, &notFound) {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("PRODUCT_NOT_FOUND", notFound.Error(), nil))
	}
	var outOfStock *common.OutOfStockError
	if errors.As(err, &outOfStock) {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("OUT_OF_STOCK", outOfStock.Error(), nil))
	}
	var mismatch *common.SkuMismatchError
	if errors.As(err, &mismatch) {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("SKU_MISMATCH", mismatch.Error(), nil))
	}
	var insufficient *common.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("INSUFFICIENT_STOCK", insufficient.Error(), nil))
	}

	log.Printf("ERROR: order submission failed: %v", err)
	return common.SendServerError(c, "Failed to create order")
}

// ListOrders handles GET /admin/orders
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	filter := &models.OrderListFilter{}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
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

	orders, err := h.orderService.ListOrders(ctx, filter)
	if err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			return common.SendValidationError(c, verr.Fields)
		}
		log.Printf("ERROR: list orders failed: %v", err)
		return common.SendServerError(c, "Failed to retrieve orders")
	}
	if orders == nil {
		orders = []*models.Order{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"orders": orders,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetOrder handles GET /admin/orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.GetOrderByID(ctx, orderID)
	if err != nil {
		log.Printf("ERROR: get order failed: %v", err)
		return common.SendServerError(c, "Failed to retrieve order")
	}
	if order == nil {
		return common.SendNotFoundError(c, "order")
	}

	return c.JSON(http.StatusOK, order)
}

// UpdateOrder handles PUT /admin/orders/:id
func (h *OrderHandlers) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Status *string `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.UpdateOrder(ctx, orderID, req.Status, req.Notes)
	if err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			return common.SendValidationError(c, verr.Fields)
		}
		var conflict *common.VersionConflictError
		if errors.As(err, &conflict) {
			return common.SendConflictError(c, conflict.Error())
		}
		log.Printf("ERROR: update order failed: %v", err)
		return common.SendServerError(c, "Failed to update order")
	}
	if order == nil {
		return common.SendNotFoundError(c, "order")
	}

	return c.JSON(http.StatusOK, order)
}
