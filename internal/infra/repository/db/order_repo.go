package db

import (
	"context"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 訂單只新增不修改，沒有 update / delete
type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create - 訂單與訂單項目一起寫入
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

// Read - 根據訂單代碼查詢，大小寫敏感
func (s *OrderRepo) GetOrderByCode(ctx context.Context, code string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("Items", orderItemsByID).
		Where("code = ?", code).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// 分頁查詢客戶的訂單
func (s *OrderRepo) GetOrdersByCustomerID(ctx context.Context, customerID int64, page model.PageRequest) ([]model.Order, int64, error) {
	page = page.Normalize()

	var total int64
	query := s.db.WithContext(ctx).Model(&model.Order{}).Where("customer_id = ?", customerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Items", orderItemsByID).
		Where("customer_id = ?", customerID).
		Order(clause.OrderByColumn{
			Column: clause.Column{Name: page.SortBy},
			Desc:   page.Order == model.SortOrderDesc,
		}).
		Order(clause.OrderByColumn{
			Column: clause.Column{Name: "id"},
			Desc:   page.Order == model.SortOrderDesc,
		}).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func orderItemsByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
