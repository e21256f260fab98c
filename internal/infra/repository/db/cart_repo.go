package db

import (
	"context"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepo 購物車與購物車項目
// 同一客戶的購物車異動以 row lock 序列化
type CartRepo struct {
	db *DbDao
}

func NewCartRepo(db *DbDao) *CartRepo {
	return &CartRepo{db: db}
}

// CreateCart 只建立購物車本身，項目由 SaveCartItem 個別寫入
func (r *CartRepo) CreateCart(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(cart).Error
}

func (r *CartRepo) GetCartByCustomerID(ctx context.Context, customerID int64) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ?", customerID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}

	var items []model.CartItem
	err = r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.CartItem{}
	}
	cart.Items = items
	return &cart, nil
}

// SaveCartItem ID 為 0 時新增，否則更新數量與價格
func (r *CartRepo) SaveCartItem(ctx context.Context, item *model.CartItem) error {
	if item.ID == 0 {
		return r.db.WithContext(ctx).Create(item).Error
	}
	result := r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity":      item.Quantity,
			"price_at_time": item.PriceAtTime,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CartRepo) DeleteCartItem(ctx context.Context, itemID int64) error {
	return r.db.WithContext(ctx).Delete(&model.CartItem{}, "id = ?", itemID).Error
}

// ClearCartItems 一次刪除購物車所有項目
func (r *CartRepo) ClearCartItems(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
}

func (r *CartRepo) UpdateCartTotal(ctx context.Context, cartID int64, total decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("total_price", total)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
