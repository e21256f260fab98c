package db

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// 需要真實的 postgres，設定 TEST_POSTGRES_DSN 才會執行
// 例: TEST_POSTGRES_DSN="user=royce password=password host=localhost port=5432 dbname=lab_cartorder sslmode=disable"
type RepoTestSuite struct {
	suite.Suite
	db        *gorm.DB
	unifiedDB *UnifiedDBImpl
	ctx       context.Context
}

func TestRepoTestSuite(t *testing.T) {
	if os.Getenv("TEST_POSTGRES_DSN") == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	suite.Run(t, new(RepoTestSuite))
}

// SetupSuite 在測試套件開始前執行
func (suite *RepoTestSuite) SetupSuite() {
	db, err := GetDbConnByDSN(os.Getenv("TEST_POSTGRES_DSN"))
	require.NoError(suite.T(), err)

	suite.db = db
	suite.unifiedDB = NewUnifiedDB(db)
	suite.ctx = context.Background()
	require.NoError(suite.T(), suite.unifiedDB.InitMigrate())
}

// SetupTest 在每個測試前執行
func (suite *RepoTestSuite) SetupTest() {
	// 清空資料表
	suite.db.Exec("DELETE FROM order_items")
	suite.db.Exec("DELETE FROM orders")
	suite.db.Exec("DELETE FROM cart_items")
	suite.db.Exec("DELETE FROM carts")
	suite.db.Exec("DELETE FROM products")
	suite.db.Exec("DELETE FROM customers")
}

// TearDownSuite 在測試套件結束後執行
func (suite *RepoTestSuite) TearDownSuite() {
	require.NoError(suite.T(), suite.unifiedDB.Close())
}

func (suite *RepoTestSuite) createCustomer(email string) *model.Customer {
	customer := &model.Customer{Name: "royce", Email: email}
	require.NoError(suite.T(), suite.unifiedDB.CreateCustomer(suite.ctx, customer))
	return customer
}

func (suite *RepoTestSuite) createProduct(name string, price string, stock int) *model.Product {
	product := &model.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(suite.T(), suite.unifiedDB.CreateProduct(suite.ctx, product))
	return product
}

func (suite *RepoTestSuite) TestCreateCustomer_DuplicateEmail() {
	suite.createCustomer("a@example.com")

	err := suite.unifiedDB.CreateCustomer(suite.ctx, &model.Customer{Name: "other", Email: "a@example.com"})
	require.ErrorIs(suite.T(), err, ErrDuplicatedKey)
}

func (suite *RepoTestSuite) TestCustomerExists() {
	customer := suite.createCustomer("a@example.com")

	exists, err := suite.unifiedDB.CustomerExists(suite.ctx, customer.ID)
	require.NoError(suite.T(), err)
	require.True(suite.T(), exists)

	exists, err = suite.unifiedDB.CustomerExists(suite.ctx, customer.ID+1000)
	require.NoError(suite.T(), err)
	require.False(suite.T(), exists)
}

func (suite *RepoTestSuite) TestMarkProductDeleted() {
	product := suite.createProduct("pen", "10.50", 3)

	require.NoError(suite.T(), suite.unifiedDB.MarkProductDeleted(suite.ctx, product.ID))

	_, err := suite.unifiedDB.GetActiveProductByID(suite.ctx, product.ID)
	require.ErrorIs(suite.T(), err, ErrRecordNotFound)

	// 歷史資料仍可用 ID 找到
	found, err := suite.unifiedDB.GetProductByID(suite.ctx, product.ID)
	require.NoError(suite.T(), err)
	require.True(suite.T(), found.IsDeleted)

	err = suite.unifiedDB.MarkProductDeleted(suite.ctx, product.ID)
	require.ErrorIs(suite.T(), err, ErrRecordNotFound)
}

func (suite *RepoTestSuite) TestDeductProductStock() {
	product := suite.createProduct("pen", "10.50", 5)

	stock, err := suite.unifiedDB.DeductProductStock(suite.ctx, product.ID, 5)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, stock)

	_, err = suite.unifiedDB.DeductProductStock(suite.ctx, product.ID+1000, 1)
	require.ErrorIs(suite.T(), err, ErrRecordNotFound)
}

func (suite *RepoTestSuite) TestCartItems() {
	customer := suite.createCustomer("a@example.com")
	pen := suite.createProduct("pen", "10.50", 5)
	book := suite.createProduct("book", "3.00", 5)

	cart := model.NewCart(customer.ID)
	require.NoError(suite.T(), suite.unifiedDB.CreateCart(suite.ctx, cart))
	require.NotZero(suite.T(), cart.ID)

	penItem := &model.CartItem{CartID: cart.ID, ProductID: pen.ID, Quantity: 1, PriceAtTime: pen.Price}
	bookItem := &model.CartItem{CartID: cart.ID, ProductID: book.ID, Quantity: 2, PriceAtTime: decimal.RequireFromString("6.00")}
	require.NoError(suite.T(), suite.unifiedDB.SaveCartItem(suite.ctx, penItem))
	require.NoError(suite.T(), suite.unifiedDB.SaveCartItem(suite.ctx, bookItem))

	// 同一台購物車不能有兩筆相同商品
	dup := &model.CartItem{CartID: cart.ID, ProductID: pen.ID, Quantity: 1, PriceAtTime: pen.Price}
	require.ErrorIs(suite.T(), suite.unifiedDB.SaveCartItem(suite.ctx, dup), ErrDuplicatedKey)

	penItem.Quantity = 2
	penItem.PriceAtTime = decimal.RequireFromString("21.00")
	require.NoError(suite.T(), suite.unifiedDB.SaveCartItem(suite.ctx, penItem))
	require.NoError(suite.T(), suite.unifiedDB.UpdateCartTotal(suite.ctx, cart.ID, decimal.RequireFromString("27.00")))

	found, err := suite.unifiedDB.GetCartByCustomerID(suite.ctx, customer.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), found.Items, 2)
	require.Equal(suite.T(), 2, found.Items[0].Quantity)
	require.True(suite.T(), decimal.RequireFromString("27.00").Equal(found.TotalPrice))

	require.NoError(suite.T(), suite.unifiedDB.DeleteCartItem(suite.ctx, bookItem.ID))
	found, err = suite.unifiedDB.GetCartByCustomerID(suite.ctx, customer.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), found.Items, 1)

	require.NoError(suite.T(), suite.unifiedDB.ClearCartItems(suite.ctx, cart.ID))
	found, err = suite.unifiedDB.GetCartByCustomerID(suite.ctx, customer.ID)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), found.Items)
}

func (suite *RepoTestSuite) TestGetOrdersByCustomerID_Paging() {
	customer := suite.createCustomer("a@example.com")
	for _, code := range []string{"ORDER-0000000A", "ORDER-0000000B", "ORDER-0000000C"} {
		order := &model.Order{
			CustomerID: customer.ID,
			Code:       code,
			TotalPrice: decimal.RequireFromString("1.00"),
			Items: []model.OrderItem{
				{ProductID: 1, ProductName: "pen", Quantity: 1, PriceAtTime: decimal.RequireFromString("1.00")},
			},
		}
		require.NoError(suite.T(), suite.unifiedDB.CreateOrder(suite.ctx, order))
	}

	page := model.PageRequest{Page: 0, Size: 2, SortBy: "code", Order: model.SortOrderAsc}
	orders, total, err := suite.unifiedDB.GetOrdersByCustomerID(suite.ctx, customer.ID, page)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(3), total)
	require.Len(suite.T(), orders, 2)
	require.Equal(suite.T(), "ORDER-0000000A", orders[0].Code)
	require.Len(suite.T(), orders[0].Items, 1)

	page.Page = 1
	orders, _, err = suite.unifiedDB.GetOrdersByCustomerID(suite.ctx, customer.ID, page)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), orders, 1)
	require.Equal(suite.T(), "ORDER-0000000C", orders[0].Code)
}

func (suite *RepoTestSuite) TestTransaction_Rollback() {
	product := suite.createProduct("pen", "10.50", 5)
	errBoom := errors.New("boom")

	err := suite.unifiedDB.Transaction(suite.ctx, func(tx UnifiedDB) error {
		locked, err := tx.GetProductByIDForUpdate(suite.ctx, product.ID)
		require.NoError(suite.T(), err)
		_, err = tx.DeductProductStock(suite.ctx, locked.ID, 3)
		require.NoError(suite.T(), err)
		return errBoom
	})
	require.ErrorIs(suite.T(), err, errBoom)

	found, err := suite.unifiedDB.GetProductByID(suite.ctx, product.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 5, found.Stock)
}
