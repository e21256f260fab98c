package model

import (
	"github.com/shopspring/decimal"
)

// Cart 每個客戶最多一台購物車，第一次存取時建立，下單後清空重複使用
// TotalPrice 永遠等於所有 CartItem.PriceAtTime 的總和
type Cart struct {
	BaseModel
	CustomerID int64           `gorm:"uniqueIndex;not null" json:"customer_id"`
	TotalPrice decimal.Decimal `gorm:"not null;type:decimal(12,2);default:0" json:"total_price"`
	Items      []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// CartItem 只存 ProductID，不持有 Product 物件
// PriceAtTime 隨數量增減累加，不會回頭讀取商品現價重算
type CartItem struct {
	BaseModel
	CartID      int64           `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID   int64           `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	PriceAtTime decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"price_at_time"`
}

func NewCart(customerID int64) *Cart {
	return &Cart{
		CustomerID: customerID,
		TotalPrice: decimal.Zero,
		Items:      []CartItem{},
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem 回傳指向 Items 內元素的指標，找不到回傳 nil
// 注意: 之後若 append Items，指標會失效
func (c *Cart) FindItem(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// AddUnit 商品數量 +1，並以商品現價累加 PriceAtTime
// 尚無此商品時先建立數量為 0 的項目
func (c *Cart) AddUnit(product *Product) *CartItem {
	item := c.FindItem(product.ID)
	if item == nil {
		c.Items = append(c.Items, CartItem{
			CartID:      c.ID,
			ProductID:   product.ID,
			Quantity:    0,
			PriceAtTime: decimal.Zero,
		})
		item = &c.Items[len(c.Items)-1]
	}
	item.changeQuantity(1, product.Price)
	c.RecalculateTotal()
	return item
}

// DecreaseUnit 數量大於 1 時 -1 並扣掉一份單價，等於 1 時直接移除項目
// 回傳是否移除，以及被異動(或被移除)的項目快照
func (c *Cart) DecreaseUnit(productID int64, unitPrice decimal.Decimal) (CartItem, bool) {
	item := c.FindItem(productID)
	if item == nil {
		return CartItem{}, false
	}
	if item.Quantity > 1 {
		item.changeQuantity(-1, unitPrice)
		c.RecalculateTotal()
		return *item, false
	}
	removed, _ := c.RemoveItem(productID)
	return removed, true
}

// RemoveItem 不論數量直接移除
func (c *Cart) RemoveItem(productID int64) (CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			removed := c.Items[i]
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.RecalculateTotal()
			return removed, true
		}
	}
	return CartItem{}, false
}

// Clear 清空項目並歸零總額
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.TotalPrice = decimal.Zero
}

// RecalculateTotal 每次異動後整台重算，O(items)
func (c *Cart) RecalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.PriceAtTime)
	}
	c.TotalPrice = total
	return total
}

func (i *CartItem) changeQuantity(delta int, unitPrice decimal.Decimal) {
	i.Quantity += delta
	i.PriceAtTime = i.PriceAtTime.Add(unitPrice.Mul(decimal.NewFromInt(int64(delta))))
}
