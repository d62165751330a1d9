package repositories

import (
	"context"
	"testing"
	"time"

	"indumart/internal/common"
	"indumart/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const productLockQuery = `SELECT sku, name, in_stock, stock_quantity\s+FROM products\s+WHERE id = \$1\s+FOR UPDATE`

type OrderRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    OrderRepository
	context context.Context
}

func (suite *OrderRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewOrderRepo(mock)
	suite.context = context.Background()
}

func (suite *OrderRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepoTestSuite))
}

func testOrder(items ...*models.OrderItem) *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		CompanyName: "Acme Corp",
		ContactName: "Jane Smith",
		Email:       "jane@acme.example",
		Phone:       "+1-555-0100",
		Status:      models.OrderStatusPending,
		Items:       items,
	}
}

func intPtr(i int) *int {
	return &i
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_Success() {
	item := &models.OrderItem{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		SKU:       "LEI-M12-A-5P-M",
		Name:      "M12 connector",
		Quantity:  10,
	}
	order := testOrder(item)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(productLockQuery).
		WithArgs(item.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"sku", "name", "in_stock", "stock_quantity"}).
			AddRow("LEI-M12-A-5P-M", "M12 connector", true, intPtr(50)))
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(order.ID, order.CompanyName, order.ContactName, order.Email, order.Phone, order.CompanyAddress, order.Notes, order.Status, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs(item.ID, order.ID, item.ProductID, item.SKU, item.Name, item.Quantity, item.Notes, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.CreateWithItems(suite.context, order)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), order.ID, item.OrderID)
	assert.False(suite.T(), order.CreatedAt.IsZero())
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_NilStockIsUnlimited() {
	item := &models.OrderItem{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		SKU:       "HYD-PUMP-220",
		Name:      "Hydraulic pump",
		Quantity:  500,
	}
	order := testOrder(item)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(productLockQuery).
		WithArgs(item.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"sku", "name", "in_stock", "stock_quantity"}).
			AddRow("HYD-PUMP-220", "Hydraulic pump", true, nil))
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(order.ID, order.CompanyName, order.ContactName, order.Email, order.Phone, order.CompanyAddress, order.Notes, order.Status, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs(item.ID, order.ID, item.ProductID, item.SKU, item.Name, item.Quantity, item.Notes, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.CreateWithItems(suite.context, order)
	assert.NoError(suite.T(), err)
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_ProductNotFound() {
	item := &models.OrderItem{ID: uuid.New(), ProductID: uuid.New(), SKU: "GONE-1", Name: "Gone", Quantity: 1}
	order := testOrder(item)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(productLockQuery).
		WithArgs(item.ProductID).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItems(suite.context, order)

	var nfErr *common.ProductNotFoundError
	assert.ErrorAs(suite.T(), err, &nfErr)
	assert.Equal(suite.T(), item.ProductID.String(), nfErr.ProductID)
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_OutOfStock() {
	item := &models.OrderItem{ID: uuid.New(), ProductID: uuid.New(), SKU: "BRG-6205", Name: "Bearing", Quantity: 2}
	order := testOrder(item)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(productLockQuery).
		WithArgs(item.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"sku", "name", "in_stock", "stock_quantity"}).
			AddRow("BRG-6205", "Bearing", false, intPtr(0)))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItems(suite.context, order)

	var oosErr *common.OutOfStockError
	assert.ErrorAs(suite.T(), err, &oosErr)
	assert.Equal(suite.T(), "BRG-6205", oosErr.SKU)
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_SkuMismatch() {
	item := &models.OrderItem{ID: uuid.New(), ProductID: uuid.New(), SKU: "STALE-SKU", Name: "Bearing", Quantity: 2}
	order := testOrder(item)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(productLockQuery).
		WithArgs(item.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"sku", "name", "in_stock", "stock_quantity"}).
			AddRow("BRG-6205-R2", "Bearing", true, intPtr(100)))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItems(suite.context, order)

	var mismatchErr *common.SkuMismatchError
	assert.ErrorAs(suite.T(), err, &mismatchErr)
	assert.Equal(suite.T(), "BRG-6205-R2", mismatchErr.Expected)
	assert.Equal(suite.T(), "STALE-SKU", mismatchErr.Submitted)
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_InsufficientStock() {
	item := &models.OrderItem{ID: uuid.New(), ProductID: uuid.New(), SKU: "LEI-M12-A-5P-M", Name: "M12 connector", Quantity: 10}
	order := testOrder(item)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(productLockQuery).
		WithArgs(item.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"sku", "name", "in_stock", "stock_quantity"}).
			AddRow("LEI-M12-A-5P-M", "M12 connector", true, intPtr(5)))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItems(suite.context, order)

	var stockErr *common.InsufficientStockError
	assert.ErrorAs(suite.T(), err, &stockErr)
	assert.Equal(suite.T(), 5, stockErr.Available)
	assert.Equal(suite.T(), 10, stockErr.Requested)
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_SecondItemFailsNothingInserted() {
	good := &models.OrderItem{ID: uuid.New(), ProductID: uuid.New(), SKU: "OK-1", Name: "Good", Quantity: 1}
	bad := &models.OrderItem{ID: uuid.New(), ProductID: uuid.New(), SKU: "BAD-1", Name: "Bad", Quantity: 1}
	order := testOrder(good, bad)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(productLockQuery).
		WithArgs(good.ProductID).
		WillReturnRows(pgxmock.NewRows([]string{"sku", "name", "in_stock", "stock_quantity"}).
			AddRow("OK-1", "Good", true, intPtr(10)))
	suite.mock.ExpectQuery(productLockQuery).
		WithArgs(bad.ProductID).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItems(suite.context, order)

	var nfErr *common.ProductNotFoundError
	assert.ErrorAs(suite.T(), err, &nfErr)
}

func (suite *OrderRepoTestSuite) TestGetByID_Success() {
	orderID := uuid.New()
	itemID := uuid.New()
	productID := uuid.New()
	now := time.Now()

	suite.mock.ExpectQuery(`SELECT id, company_name, contact_name, email, phone, company_address, notes, status, created_at, updated_at\s+FROM orders\s+WHERE id = \$1`).
		WithArgs(orderID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "company_name", "contact_name", "email", "phone", "company_address", "notes", "status", "created_at", "updated_at"}).
			AddRow(orderID, "Acme Corp", "Jane Smith", "jane@acme.example", "+1-555-0100", nil, nil, "pending", now, now))
	suite.mock.ExpectQuery(`FROM order_items\s+WHERE order_id = ANY\(\$1\)`).
		WithArgs([]uuid.UUID{orderID}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "product_id", "sku", "name", "quantity", "notes", "created_at"}).
			AddRow(itemID, orderID, productID, "LEI-M12-A-5P-M", "M12 connector", 10, nil, now))

	order, err := suite.repo.GetByID(suite.context, orderID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), orderID, order.ID)
	assert.Len(suite.T(), order.Items, 1)
	assert.Equal(suite.T(), 10, order.Items[0].Quantity)
}

func (suite *OrderRepoTestSuite) TestGetByID_NotFound() {
	orderID := uuid.New()

	suite.mock.ExpectQuery(`FROM orders\s+WHERE id = \$1`).
		WithArgs(orderID).
		WillReturnError(pgx.ErrNoRows)

	order, err := suite.repo.GetByID(suite.context, orderID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), order)
}

func (suite *OrderRepoTestSuite) TestList_StatusFilter() {
	status := models.OrderStatusQuoted
	orderID := uuid.New()
	now := time.Now()

	suite.mock.ExpectQuery(`FROM orders\s+WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(status, 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "company_name", "contact_name", "email", "phone", "company_address", "notes", "status", "created_at", "updated_at"}).
			AddRow(orderID, "Acme Corp", "Jane Smith", "jane@acme.example", "+1-555-0100", nil, nil, status, now, now))
	suite.mock.ExpectQuery(`FROM order_items\s+WHERE order_id = ANY\(\$1\)`).
		WithArgs([]uuid.UUID{orderID}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "product_id", "sku", "name", "quantity", "notes", "created_at"}))

	orders, err := suite.repo.List(suite.context, &models.OrderListFilter{Status: &status, Limit: 50, Offset: 0})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), orders, 1)
	assert.Equal(suite.T(), status, orders[0].Status)
	assert.Empty(suite.T(), orders[0].Items)
}

func (suite *OrderRepoTestSuite) TestList_Empty() {
	suite.mock.ExpectQuery(`FROM orders\s+ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "company_name", "contact_name", "email", "phone", "company_address", "notes", "status", "created_at", "updated_at"}))

	orders, err := suite.repo.List(suite.context, &models.OrderListFilter{Limit: 50, Offset: 0})
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), orders)
}

func (suite *OrderRepoTestSuite) TestUpdateStatusNotes_Success() {
	orderID := uuid.New()
	notes := "quote sent 2026-08-12"
	readAt := time.Now().Add(-time.Hour)

	suite.mock.ExpectExec(`UPDATE orders\s+SET status = \$1, notes = COALESCE\(\$2, notes\), updated_at = NOW\(\)\s+WHERE id = \$3 AND updated_at = \$4`).
		WithArgs(models.OrderStatusQuoted, &notes, orderID, readAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateStatusNotes(suite.context, orderID, models.OrderStatusQuoted, &notes, readAt)
	assert.NoError(suite.T(), err)
}

func (suite *OrderRepoTestSuite) TestUpdateStatusNotes_StaleReadConflicts() {
	orderID := uuid.New()
	readAt := time.Now().Add(-time.Hour)

	// Another admin's edit bumped updated_at, so the precondition matches
	// no row.
	suite.mock.ExpectExec(`UPDATE orders\s+SET status = \$1, notes = COALESCE\(\$2, notes\), updated_at = NOW\(\)\s+WHERE id = \$3 AND updated_at = \$4`).
		WithArgs(models.OrderStatusApproved, (*string)(nil), orderID, readAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.UpdateStatusNotes(suite.context, orderID, models.OrderStatusApproved, nil, readAt)

	var conflict *common.VersionConflictError
	assert.ErrorAs(suite.T(), err, &conflict)
	assert.Equal(suite.T(), "order", conflict.Resource)
}

func (suite *OrderRepoTestSuite) TestCountPendingOlderThan() {
	cutoff := time.Now().Add(-48 * time.Hour)

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE status = \$1 AND created_at < \$2`).
		WithArgs(models.OrderStatusPending, cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := suite.repo.CountPendingOlderThan(suite.context, cutoff)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, count)
}
