package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/db"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type ICartService interface {
	GetOrCreateCart(ctx context.Context, customerID int64) (*model.Cart, error)
	GetCart(ctx context.Context, customerID int64) (*model.Cart, error)
	RequireCart(ctx context.Context, customerID int64) (*model.Cart, error)
	AddProduct(ctx context.Context, customerID, productID int64) (*model.Cart, error)
	ReduceProduct(ctx context.Context, customerID, productID int64) (*model.Cart, error)
	RemoveItem(ctx context.Context, customerID, productID int64) (*model.Cart, error)
	EmptyCart(ctx context.Context, customerID int64) error
}

// CartService 每個異動都是一筆交易，購物車列在交易內被鎖住
// 同一台購物車的異動因此是序列化的
type CartService struct {
	dbRepo db.UnifiedDB
}

func NewCartService(dbRepo db.UnifiedDB) *CartService {
	if dbRepo == nil {
		panic("cart service dbRepo is nil")
	}
	return &CartService{dbRepo: dbRepo}
}

// GetOrCreateCart 客戶不存在回傳 ErrCustomerNotFound，沒有購物車就建立一台空的
func (c *CartService) GetOrCreateCart(ctx context.Context, customerID int64) (*model.Cart, error) {
	var cart *model.Cart
	err := c.dbRepo.Transaction(ctx, func(tx db.UnifiedDB) error {
		var err error
		cart, err = getOrCreateCart(ctx, tx, customerID)
		return err
	})
	if errors.Is(err, db.ErrDuplicatedKey) {
		// 同一客戶的第一次存取同時發生，另一筆已建立購物車
		return c.RequireCart(ctx, customerID)
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart 瀏覽用，不會因為沒有購物車而失敗
func (c *CartService) GetCart(ctx context.Context, customerID int64) (*model.Cart, error) {
	return c.GetOrCreateCart(ctx, customerID)
}

// RequireCart 沒有購物車回傳 ErrEmptyCart
func (c *CartService) RequireCart(ctx context.Context, customerID int64) (*model.Cart, error) {
	var cart *model.Cart
	err := c.dbRepo.Transaction(ctx, func(tx db.UnifiedDB) error {
		var err error
		cart, err = requireCart(ctx, tx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddProduct 數量 +1，之後檢查整台購物車每個項目的庫存
// 任何一項不足都整筆 rollback
func (c *CartService) AddProduct(ctx context.Context, customerID, productID int64) (*model.Cart, error) {
	cart, err := c.addProduct(ctx, customerID, productID)
	if errors.Is(err, db.ErrDuplicatedKey) {
		// 同一客戶第一次加入商品同時發生，購物車已由另一筆建立，重來一次
		cart, err = c.addProduct(ctx, customerID, productID)
	}
	if err != nil {
		log.Error().Err(err).Int64("customer_id", customerID).Int64("product_id", productID).Msg("add product to cart failed")
		return nil, err
	}
	return cart, nil
}

func (c *CartService) addProduct(ctx context.Context, customerID, productID int64) (*model.Cart, error) {
	var cart *model.Cart
	err := c.dbRepo.Transaction(ctx, func(tx db.UnifiedDB) error {
		var err error
		cart, err = getOrCreateCart(ctx, tx, customerID)
		if err != nil {
			return err
		}

		product, err := getActiveProduct(ctx, tx, productID)
		if err != nil {
			return err
		}

		cart.AddUnit(product)
		if err := validateCartStock(ctx, tx, cart, product); err != nil {
			return err
		}

		item := cart.FindItem(productID)
		if err := tx.SaveCartItem(ctx, item); err != nil {
			return fmt.Errorf("save cart item failed: %w", err)
		}
		return saveCartTotal(ctx, tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// ReduceProduct 數量大於 1 時 -1，等於 1 時移除項目
func (c *CartService) ReduceProduct(ctx context.Context, customerID, productID int64) (*model.Cart, error) {
	var cart *model.Cart
	err := c.dbRepo.Transaction(ctx, func(tx db.UnifiedDB) error {
		var err error
		cart, err = requireCart(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if cart.FindItem(productID) == nil {
			return ErrProductNotFound
		}

		// 以商品現價扣回，已刪除的商品也要能從購物車減量
		product, err := tx.GetProductByID(ctx, productID)
		if err != nil {
			if errors.Is(err, db.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("get product failed: %w", err)
		}

		item, removed := cart.DecreaseUnit(productID, product.Price)
		if removed {
			err = tx.DeleteCartItem(ctx, item.ID)
		} else {
			err = tx.SaveCartItem(ctx, &item)
		}
		if err != nil {
			return fmt.Errorf("update cart item failed: %w", err)
		}
		return saveCartTotal(ctx, tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem 不論數量直接移除，移除與新總額在同一筆交易寫入
func (c *CartService) RemoveItem(ctx context.Context, customerID, productID int64) (*model.Cart, error) {
	var cart *model.Cart
	err := c.dbRepo.Transaction(ctx, func(tx db.UnifiedDB) error {
		var err error
		cart, err = requireCart(ctx, tx, customerID)
		if err != nil {
			return err
		}

		item, ok := cart.RemoveItem(productID)
		if !ok {
			return ErrProductNotFound
		}
		if err := tx.DeleteCartItem(ctx, item.ID); err != nil {
			return fmt.Errorf("delete cart item failed: %w", err)
		}
		return saveCartTotal(ctx, tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (c *CartService) EmptyCart(ctx context.Context, customerID int64) error {
	return c.dbRepo.Transaction(ctx, func(tx db.UnifiedDB) error {
		cart, err := requireCart(ctx, tx, customerID)
		if err != nil {
			return err
		}
		return emptyCart(ctx, tx, cart)
	})
}

func getOrCreateCart(ctx context.Context, tx db.UnifiedDB, customerID int64) (*model.Cart, error) {
	if err := requireCustomer(ctx, tx, customerID); err != nil {
		return nil, err
	}

	cart, err := tx.GetCartByCustomerID(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, db.ErrRecordNotFound) {
		return nil, fmt.Errorf("get cart failed: %w", err)
	}

	cart = model.NewCart(customerID)
	if err := tx.CreateCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("create cart failed: %w", err)
	}
	log.Debug().Int64("customer_id", customerID).Int64("cart_id", cart.ID).Msg("cart created")
	return cart, nil
}

func requireCart(ctx context.Context, tx db.UnifiedDB, customerID int64) (*model.Cart, error) {
	if err := requireCustomer(ctx, tx, customerID); err != nil {
		return nil, err
	}

	cart, err := tx.GetCartByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("get cart failed: %w", err)
	}
	return cart, nil
}

// validateCartStock 檢查整台購物車，不只剛異動的項目
// touched 是剛讀過的商品，省一次查詢
func validateCartStock(ctx context.Context, repo db.IProductRepository, cart *model.Cart, touched *model.Product) error {
	for _, item := range cart.Items {
		product := touched
		if item.ProductID != touched.ID {
			var err error
			product, err = repo.GetProductByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, db.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return fmt.Errorf("get product failed: %w", err)
			}
		}
		if !product.HasStockFor(item.Quantity) {
			return newInsufficientStockError(product.ID, product.Name, item.Quantity, product.Stock)
		}
	}
	return nil
}

func emptyCart(ctx context.Context, tx db.ICartRepository, cart *model.Cart) error {
	if err := tx.ClearCartItems(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart items failed: %w", err)
	}
	cart.Clear()
	if err := tx.UpdateCartTotal(ctx, cart.ID, decimal.Zero); err != nil {
		return fmt.Errorf("update cart total failed: %w", err)
	}
	return nil
}

func saveCartTotal(ctx context.Context, tx db.ICartRepository, cart *model.Cart) error {
	if err := tx.UpdateCartTotal(ctx, cart.ID, cart.RecalculateTotal()); err != nil {
		return fmt.Errorf("update cart total failed: %w", err)
	}
	return nil
}

var _ ICartService = (*CartService)(nil)
