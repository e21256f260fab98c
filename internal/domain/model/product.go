package model

import (
	"github.com/shopspring/decimal"
)

// Product 庫存唯一真相來源
// 被購物車或訂單引用過的商品只做軟刪除，歷史訂單仍可透過 ID 找到
type Product struct {
	BaseModel
	Name      string          `gorm:"not null;type:varchar(255)" json:"name"`
	Price     decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"price"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	IsDeleted bool            `gorm:"not null;default:false;index" json:"is_deleted"`
}

// HasStockFor 庫存是否足夠指定數量
func (p *Product) HasStockFor(quantity int) bool {
	return quantity <= p.Stock
}
