package memdb

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	product := &model.Product{Name: "pen", Price: decimal.NewFromInt(10), Stock: 5}
	require.NoError(t, store.CreateProduct(ctx, product))

	errBoom := errors.New("boom")
	err := store.Transaction(ctx, func(tx db.UnifiedDB) error {
		_, err := tx.DeductProductStock(ctx, product.ID, 3)
		require.NoError(t, err)
		require.NoError(t, tx.CreateCustomer(ctx, &model.Customer{Name: "a", Email: "a@example.com"}))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	found, err := store.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Stock)

	// 交易內建立的客戶也一併還原，email 可以再用
	require.NoError(t, store.CreateCustomer(ctx, &model.Customer{Name: "a", Email: "a@example.com"}))
}

func TestTransaction_RollbackOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	product := &model.Product{Name: "pen", Price: decimal.NewFromInt(10), Stock: 5}
	require.NoError(t, store.CreateProduct(ctx, product))

	require.Panics(t, func() {
		_ = store.Transaction(ctx, func(tx db.UnifiedDB) error {
			_, _ = tx.DeductProductStock(ctx, product.ID, 5)
			panic("boom")
		})
	})

	found, err := store.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Stock)
}

func TestTransaction_Nested(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.Transaction(ctx, func(tx db.UnifiedDB) error {
		return tx.Transaction(ctx, func(inner db.UnifiedDB) error {
			return inner.CreateCustomer(ctx, &model.Customer{Name: "a", Email: "a@example.com"})
		})
	})
	require.NoError(t, err)

	customer, err := store.GetCustomerByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", customer.Email)
}

func TestReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	product := &model.Product{Name: "pen", Price: decimal.NewFromInt(10), Stock: 5}
	require.NoError(t, store.CreateProduct(ctx, product))

	found, err := store.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	found.Stock = 100

	again, err := store.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, again.Stock)
}

func TestCartItems(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.GetCartByCustomerID(ctx, 1)
	require.ErrorIs(t, err, db.ErrRecordNotFound)

	cart := model.NewCart(1)
	require.NoError(t, store.CreateCart(ctx, cart))
	require.ErrorIs(t, store.CreateCart(ctx, model.NewCart(1)), db.ErrDuplicatedKey)

	item := &model.CartItem{CartID: cart.ID, ProductID: 7, Quantity: 1, PriceAtTime: decimal.NewFromInt(3)}
	require.NoError(t, store.SaveCartItem(ctx, item))
	require.ErrorIs(t, store.SaveCartItem(ctx, &model.CartItem{CartID: cart.ID, ProductID: 7, Quantity: 1}), db.ErrDuplicatedKey)

	item.Quantity = 2
	item.PriceAtTime = decimal.NewFromInt(6)
	require.NoError(t, store.SaveCartItem(ctx, item))

	found, err := store.GetCartByCustomerID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items[0].Quantity)

	require.NoError(t, store.ClearCartItems(ctx, cart.ID))
	found, err = store.GetCartByCustomerID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, found.Items)
}

func TestGetOrdersByCustomerID(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	for i, code := range []string{"ORDER-B", "ORDER-A", "ORDER-C"} {
		require.NoError(t, store.CreateOrder(ctx, &model.Order{
			CustomerID: 1,
			Code:       code,
			TotalPrice: decimal.NewFromInt(int64(i + 1)),
			Items:      []model.OrderItem{{ProductID: 1, ProductName: "pen", Quantity: 1, PriceAtTime: decimal.NewFromInt(1)}},
		}))
	}
	require.NoError(t, store.CreateOrder(ctx, &model.Order{CustomerID: 2, Code: "ORDER-X"}))

	orders, total, err := store.GetOrdersByCustomerID(ctx, 1, model.PageRequest{Size: 2, SortBy: "code", Order: model.SortOrderAsc})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORDER-A", orders[0].Code)
	assert.Equal(t, "ORDER-B", orders[1].Code)
	require.Len(t, orders[0].Items, 1)

	orders, _, err = store.GetOrdersByCustomerID(ctx, 1, model.PageRequest{Size: 2, SortBy: "total_price", Order: model.SortOrderDesc})
	require.NoError(t, err)
	assert.Equal(t, "ORDER-C", orders[0].Code)

	orders, _, err = store.GetOrdersByCustomerID(ctx, 1, model.PageRequest{Page: 5, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, orders)

	// Page*Size 溢位成負數
	orders, total, err = store.GetOrdersByCustomerID(ctx, 1, model.PageRequest{Page: math.MaxInt64/20 + 1, Size: 20})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, int64(3), total)
}
