package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/cartorder/internal/domain/model/event"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const OrderCodePrefix = "ORDER-"

type IOrderService interface {
	PlaceOrder(ctx context.Context, customerID int64) (*model.Order, error)
	GetAllOrdersForCustomer(ctx context.Context, customerID int64, page model.PageRequest) (model.Page[model.Order], error)
	GetOrderByCode(ctx context.Context, code string) (*model.Order, error)
}

// GenerateOrderCode ORDER- 加上 uuid 前 8 碼轉大寫
// 碰撞機率視為可忽略，不重試，由 unique index 把關
func GenerateOrderCode() string {
	return OrderCodePrefix + strings.ToUpper(uuid.New().String()[:8])
}

// OrderCacheWarmer orderReader 若帶快取，commit 後把新訂單放進去
type OrderCacheWarmer interface {
	CacheOrder(ctx context.Context, order *model.Order)
}

type OrderService struct {
	dbRepo         db.UnifiedDB
	orderReader    db.IOrderRepository
	productService *ProductService
	publisher      EventPublisher
	codeGenerator  func() string
}

// orderReader 提供訂單查詢，可以是 db 本身或 cache decorator
// 寫入一律走 dbRepo 的交易
func NewOrderService(dbRepo db.UnifiedDB, orderReader db.IOrderRepository, productService *ProductService, publisher EventPublisher) *OrderService {
	if dbRepo == nil {
		panic("order service dbRepo is nil")
	}
	if orderReader == nil {
		panic("order service orderReader is nil")
	}
	if productService == nil {
		panic("order service productService is nil")
	}
	if publisher == nil {
		panic("order service publisher is nil")
	}
	return &OrderService{
		dbRepo:         dbRepo,
		orderReader:    orderReader,
		productService: productService,
		publisher:      publisher,
		codeGenerator:  GenerateOrderCode,
	}
}

/*
PlaceOrder 購物車轉訂單，整個流程是一筆交易:

 1. 取得購物車，沒有購物車 ErrEmptyCart
 2. 購物車沒有項目 ErrEmptyCart
 3. 任何項目的商品已刪除 ErrProductNotFound，先於庫存檢查
 4. 逐項檢查庫存並立即扣除，不足 ErrInsufficientStock，交易 rollback 還原已扣的庫存
 5. 以購物車內容建立訂單快照，價格不重算
 6. 產生訂單代碼
 7. 寫入訂單
 8. 清空購物車
 9. 回傳訂單

commit 之後才發送 OrderPlaced 事件，發送失敗只記錄 log
*/
func (o *OrderService) PlaceOrder(ctx context.Context, customerID int64) (*model.Order, error) {
	var order *model.Order
	err := o.dbRepo.Transaction(ctx, func(tx db.UnifiedDB) error {
		cart, err := requireCart(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return ErrEmptyCart
		}

		products := make(map[int64]*model.Product, len(cart.Items))
		for _, item := range cart.Items {
			product, err := tx.GetProductByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, db.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return fmt.Errorf("get product failed: %w", err)
			}
			if product.IsDeleted {
				return ErrProductNotFound
			}
			products[item.ProductID] = product
		}

		productNames := make(map[int64]string, len(products))
		for _, item := range cart.Items {
			product := products[item.ProductID]
			if !product.HasStockFor(item.Quantity) {
				return newInsufficientStockError(product.ID, product.Name, item.Quantity, product.Stock)
			}
			if err := o.productService.ReduceStock(ctx, tx, product, item.Quantity); err != nil {
				return err
			}
			productNames[item.ProductID] = product.Name
		}

		order = model.NewOrderFromCart(cart, o.codeGenerator(), productNames)
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order failed: %w", err)
		}

		return emptyCart(ctx, tx, cart)
	})
	if err != nil {
		log.Error().Err(err).Int64("customer_id", customerID).Msg("place order failed")
		return nil, err
	}

	log.Info().Int64("customer_id", customerID).Str("order_code", order.Code).Msg("order placed")
	if warmer, ok := o.orderReader.(OrderCacheWarmer); ok {
		warmer.CacheOrder(ctx, order)
	}
	if err := o.publisher.Publish(ctx, evt_model.NewOrderPlacedEvent(order)); err != nil {
		log.Error().Err(err).Str("order_code", order.Code).Msg("publish order placed event failed")
	}
	return order, nil
}

// GetAllOrdersForCustomer 預設依建立時間新到舊
func (o *OrderService) GetAllOrdersForCustomer(ctx context.Context, customerID int64, page model.PageRequest) (model.Page[model.Order], error) {
	page = page.Normalize()
	if err := requireCustomer(ctx, o.dbRepo, customerID); err != nil {
		return model.Page[model.Order]{}, err
	}

	orders, total, err := o.orderReader.GetOrdersByCustomerID(ctx, customerID, page)
	if err != nil {
		return model.Page[model.Order]{}, fmt.Errorf("get orders failed: %w", err)
	}
	return model.NewPage(orders, page, total), nil
}

// GetOrderByCode 大小寫敏感的完全比對
func (o *OrderService) GetOrderByCode(ctx context.Context, code string) (*model.Order, error) {
	order, err := o.orderReader.GetOrderByCode(ctx, code)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order failed: %w", err)
	}
	return order, nil
}

var _ IOrderService = (*OrderService)(nil)
