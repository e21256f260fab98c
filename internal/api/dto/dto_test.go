package dto

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestValidate_ProductRequest(t *testing.T) {
	require.NoError(t, Validate(ProductRequest{Name: "pen", Price: decimal.RequireFromString("1.00"), Stock: 1}))
	require.Error(t, Validate(ProductRequest{Name: "pen", Price: decimal.RequireFromString("0.99"), Stock: 1}))
	require.Error(t, Validate(ProductRequest{Name: "pen", Price: decimal.NewFromInt(5), Stock: 0}))
	require.Error(t, Validate(ProductRequest{Price: decimal.NewFromInt(5), Stock: 1}))
}

func TestValidate_CustomerAndCart(t *testing.T) {
	require.NoError(t, Validate(CreateCustomerRequest{Name: "royce", Email: "a@example.com"}))
	require.Error(t, Validate(CreateCustomerRequest{Name: "royce", Email: "nope"}))

	require.NoError(t, Validate(CartItemRequest{CustomerID: 1, ProductID: 2}))
	require.Error(t, Validate(CartItemRequest{CustomerID: 1}))
}
