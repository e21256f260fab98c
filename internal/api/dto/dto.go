package dto

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// ProductRequest 新增與修改共用
type ProductRequest struct {
	Name  string          `json:"name" validate:"required,max=255"`
	Price decimal.Decimal `json:"price" validate:"gte=1"`
	Stock int             `json:"stock" validate:"gte=1"`
}

// CartItemRequest 加入、減少、移除購物車商品共用
type CartItemRequest struct {
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
	ProductID  int64 `json:"product_id" validate:"required,gt=0"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate decimal 以 float64 參與 gte / gt 等比較
func Validate(req any) error {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate.Struct(req)
}
