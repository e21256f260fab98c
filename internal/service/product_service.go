package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/cartorder/internal/domain/model/event"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/db"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type IProductService interface {
	CreateProduct(ctx context.Context, params ProductParams) (*model.Product, error)
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, productID int64, params ProductParams) (*model.Product, error)
	MarkDeleted(ctx context.Context, productID int64) error
	ReduceStock(ctx context.Context, repo db.IProductRepository, product *model.Product, quantity int) error
}

// MinProductPrice 與 HTTP 層 dto.ProductRequest 的 gte=1 一致
var MinProductPrice = decimal.NewFromInt(1)

type ProductParams struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

func (p ProductParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidArgument)
	}
	if p.Price.LessThan(MinProductPrice) {
		return fmt.Errorf("%w: product price must be at least %s", ErrInvalidArgument, MinProductPrice)
	}
	if p.Stock < 1 {
		return fmt.Errorf("%w: product stock must be at least 1", ErrInvalidArgument)
	}
	return nil
}

// ProductService 庫存唯一的寫入者是下單流程，透過 ReduceStock
type ProductService struct {
	dbRepo    db.UnifiedDB
	publisher EventPublisher
}

func NewProductService(dbRepo db.UnifiedDB, publisher EventPublisher) *ProductService {
	if dbRepo == nil {
		panic("product service dbRepo is nil")
	}
	if publisher == nil {
		panic("product service publisher is nil")
	}
	return &ProductService{dbRepo: dbRepo, publisher: publisher}
}

func (p *ProductService) CreateProduct(ctx context.Context, params ProductParams) (*model.Product, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	product := &model.Product{
		Name:  strings.TrimSpace(params.Name),
		Price: params.Price,
		Stock: params.Stock,
	}
	if err := p.dbRepo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product failed: %w", err)
	}
	return product, nil
}

// GetProduct 已軟刪除視同不存在
func (p *ProductService) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	return getActiveProduct(ctx, p.dbRepo, productID)
}

func (p *ProductService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := p.dbRepo.GetActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products failed: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// UpdateProduct 價格異動不影響已在購物車或訂單內的 priceAtTime
func (p *ProductService) UpdateProduct(ctx context.Context, productID int64, params ProductParams) (*model.Product, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	var updated *model.Product
	err := p.dbRepo.Transaction(ctx, func(tx db.UnifiedDB) error {
		product, err := tx.GetProductByIDForUpdate(ctx, productID)
		if err != nil {
			if errors.Is(err, db.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("get product failed: %w", err)
		}
		if product.IsDeleted {
			return ErrProductNotFound
		}

		product.Name = strings.TrimSpace(params.Name)
		product.Price = params.Price
		product.Stock = params.Stock
		if err := tx.UpdateProduct(ctx, product); err != nil {
			return fmt.Errorf("update product failed: %w", err)
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkDeleted 軟刪除，歷史訂單仍能以 ID 查到商品
func (p *ProductService) MarkDeleted(ctx context.Context, productID int64) error {
	if err := p.dbRepo.MarkProductDeleted(ctx, productID); err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("mark product deleted failed: %w", err)
	}

	if err := p.publisher.Publish(ctx, evt_model.NewProductDeletedEvent(productID)); err != nil {
		log.Error().Err(err).Int64("product_id", productID).Msg("publish product deleted event failed")
	}
	return nil
}

// ReduceStock 無條件扣庫存，不做下限檢查
// 呼叫端必須先確認庫存足夠，repo 通常是交易內的 tx
func (p *ProductService) ReduceStock(ctx context.Context, repo db.IProductRepository, product *model.Product, quantity int) error {
	stock, err := repo.DeductProductStock(ctx, product.ID, quantity)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("reduce stock failed: %w", err)
	}
	product.Stock = stock
	return nil
}

func getActiveProduct(ctx context.Context, repo db.IProductRepository, productID int64) (*model.Product, error) {
	product, err := repo.GetActiveProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product failed: %w", err)
	}
	return product, nil
}

var _ IProductService = (*ProductService)(nil)
