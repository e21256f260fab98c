package db

import (
	"context"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrRecordNotFound 所有 repository 找不到資料時回傳此錯誤(或包裝它)
var ErrRecordNotFound = gorm.ErrRecordNotFound

// ErrDuplicatedKey 違反 unique 限制，例如重複的 email 或訂單代碼
var ErrDuplicatedKey = gorm.ErrDuplicatedKey

// UnifiedDB 統一的資料庫介面
// Transaction 內拿到的 tx 也是 UnifiedDB，所有操作同生共死
type UnifiedDB interface {
	Transaction(ctx context.Context, fn func(tx UnifiedDB) error) error

	ICustomerRepository
	IProductRepository
	ICartRepository
	IOrderRepository
}

// ICustomerRepository Customer 相關操作介面
type ICustomerRepository interface {
	CreateCustomer(ctx context.Context, customer *model.Customer) error
	GetCustomerByID(ctx context.Context, id int64) (*model.Customer, error)
	CustomerExists(ctx context.Context, id int64) (bool, error)
}

// IProductRepository Product 相關操作介面
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	// GetProductByID 包含已軟刪除的商品
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	// GetActiveProductByID 已軟刪除視同不存在
	GetActiveProductByID(ctx context.Context, id int64) (*model.Product, error)
	// GetProductByIDForUpdate 鎖定該列直到交易結束
	GetProductByIDForUpdate(ctx context.Context, id int64) (*model.Product, error)
	GetActiveProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	// DeductProductStock 不檢查下限，呼叫端負責先確認庫存足夠
	DeductProductStock(ctx context.Context, id int64, quantity int) (int, error)
	MarkProductDeleted(ctx context.Context, id int64) error
}

// ICartRepository Cart 相關操作介面
// 購物車項目的新增、刪除、清空都是明確的操作，不依賴 cascade save
type ICartRepository interface {
	CreateCart(ctx context.Context, cart *model.Cart) error
	// GetCartByCustomerID 鎖定購物車列並載入所有項目
	GetCartByCustomerID(ctx context.Context, customerID int64) (*model.Cart, error)
	SaveCartItem(ctx context.Context, item *model.CartItem) error
	DeleteCartItem(ctx context.Context, itemID int64) error
	ClearCartItems(ctx context.Context, cartID int64) error
	UpdateCartTotal(ctx context.Context, cartID int64, total decimal.Decimal) error
}

// IOrderRepository Order 相關操作介面
type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByCode(ctx context.Context, code string) (*model.Order, error)
	GetOrdersByCustomerID(ctx context.Context, customerID int64, page model.PageRequest) ([]model.Order, int64, error)
}

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*CustomerRepo
	*ProductDBRepo
	*CartRepo
	*OrderRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		db:            db,
		dbDao:         dbDao,
		CustomerRepo:  NewCustomerRepo(dbDao),
		ProductDBRepo: NewProductDBRepo(dbDao),
		CartRepo:      NewCartRepo(dbDao),
		OrderRepo:     NewOrderRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// GetDB 獲取資料庫連接
func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.db
}

// Transaction fn 回傳錯誤或 panic 時整筆 rollback
// 巢狀呼叫時 gorm 以 savepoint 處理
func (u *UnifiedDBImpl) Transaction(ctx context.Context, fn func(tx UnifiedDB) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUnifiedDB(tx))
	})
}

func (u *UnifiedDBImpl) Close() error {
	sqlDB, err := u.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var (
	_ UnifiedDB           = (*UnifiedDBImpl)(nil)
	_ ICustomerRepository = (*CustomerRepo)(nil)
	_ IProductRepository  = (*ProductDBRepo)(nil)
	_ ICartRepository     = (*CartRepo)(nil)
	_ IOrderRepository    = (*OrderRepo)(nil)
)
