package model

import (
	"github.com/shopspring/decimal"
)

// Order 建立後不可變更
// TotalPrice 與每個 OrderItem 的價格都是下單當下的快照
type Order struct {
	BaseModel
	CustomerID int64           `gorm:"not null;index" json:"customer_id"`
	Code       string          `gorm:"uniqueIndex;not null;type:varchar(32)" json:"code"`
	TotalPrice decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"total_price"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	BaseModel
	OrderID     int64           `gorm:"not null;index" json:"order_id"`
	ProductID   int64           `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"not null;type:varchar(255)" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	PriceAtTime decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"price_at_time"`
}

// NewOrderFromCart 直接複製購物車內容，不重新計價
// productNames 以 ProductID 查商品名稱
func NewOrderFromCart(cart *Cart, code string, productNames map[int64]string) *Order {
	items := make([]OrderItem, 0, len(cart.Items))
	for _, cartItem := range cart.Items {
		items = append(items, OrderItem{
			ProductID:   cartItem.ProductID,
			ProductName: productNames[cartItem.ProductID],
			Quantity:    cartItem.Quantity,
			PriceAtTime: cartItem.PriceAtTime,
		})
	}
	return &Order{
		CustomerID: cart.CustomerID,
		Code:       code,
		TotalPrice: cart.TotalPrice,
		Items:      items,
	}
}
