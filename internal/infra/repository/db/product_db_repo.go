package db

import (
	"context"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductDBRepo 商品與庫存，db 為唯一真相來源
type ProductDBRepo struct {
	db *DbDao
}

func NewProductDBRepo(db *DbDao) *ProductDBRepo {
	return &ProductDBRepo{db: db}
}

func (s *ProductDBRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *ProductDBRepo) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductDBRepo) GetActiveProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductDBRepo) GetProductByIDForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Read - 查詢未刪除的商品
func (s *ProductDBRepo) GetActiveProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Where("is_deleted = ?", false).Order("id").Find(&products).Error
	return products, err
}

// Update - 更新商品
func (s *ProductDBRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Save(product).Error
}

// DeductProductStock 直接扣除，不檢查是否變成負數
func (s *ProductDBRepo) DeductProductStock(ctx context.Context, id int64, quantity int) (int, error) {
	result := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var stock int
	err := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Select("stock").
		Scan(&stock).Error
	if err != nil {
		return 0, err
	}
	return stock, nil
}

// 軟刪除，已刪除的商品再刪一次視同找不到
func (s *ProductDBRepo) MarkProductDeleted(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
