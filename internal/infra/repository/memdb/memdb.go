package memdb

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/db"
	"github.com/shopspring/decimal"
)

// state 以 ID 為 key 的資料表，關聯一律用 ID 查
type state struct {
	seq        int64
	customers  map[int64]model.Customer
	products   map[int64]model.Product
	carts      map[int64]model.Cart
	cartItems  map[int64]model.CartItem
	orders     map[int64]model.Order
	orderItems map[int64]model.OrderItem
}

func newState() *state {
	return &state{
		customers:  map[int64]model.Customer{},
		products:   map[int64]model.Product{},
		carts:      map[int64]model.Cart{},
		cartItems:  map[int64]model.CartItem{},
		orders:     map[int64]model.Order{},
		orderItems: map[int64]model.OrderItem{},
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := &state{
		seq:        s.seq,
		customers:  make(map[int64]model.Customer, len(s.customers)),
		products:   make(map[int64]model.Product, len(s.products)),
		carts:      make(map[int64]model.Cart, len(s.carts)),
		cartItems:  make(map[int64]model.CartItem, len(s.cartItems)),
		orders:     make(map[int64]model.Order, len(s.orders)),
		orderItems: make(map[int64]model.OrderItem, len(s.orderItems)),
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.cartItems {
		c.cartItems[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.orderItems {
		c.orderItems[k] = v
	}
	return c
}

// Store 記憶體版的 UnifiedDB，開發環境與測試使用
// 整個 store 共用一把鎖，交易期間獨佔，等同 serializable
type Store struct {
	mu    *sync.Mutex
	state *state
	// inTx 為 true 代表這個 Store 是交易內的 view，鎖已被持有
	inTx bool
}

func NewStore() *Store {
	return &Store{
		mu:    &sync.Mutex{},
		state: newState(),
	}
}

func (s *Store) run(fn func(st *state) error) error {
	if s.inTx {
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// Transaction fn 回傳錯誤或 panic 時還原成交易前的快照
// 巢狀呼叫直接加入外層交易
func (s *Store) Transaction(ctx context.Context, fn func(tx db.UnifiedDB) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	tx := &Store{mu: s.mu, state: s.state, inTx: true}
	defer func() {
		if r := recover(); r != nil {
			s.restore(snapshot)
			panic(r)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()
	return fn(tx)
}

func (s *Store) restore(snapshot *state) {
	*s.state = *snapshot
}

func (s *Store) Close() error {
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

// customer

func (s *Store) CreateCustomer(ctx context.Context, customer *model.Customer) error {
	return s.run(func(st *state) error {
		for _, c := range st.customers {
			if c.Email == customer.Email {
				return fmt.Errorf("customer email %s: %w", customer.Email, db.ErrDuplicatedKey)
			}
		}
		customer.ID = st.nextID()
		customer.CreatedAt = now()
		customer.UpdatedAt = customer.CreatedAt
		st.customers[customer.ID] = *customer
		return nil
	})
}

func (s *Store) GetCustomerByID(ctx context.Context, id int64) (*model.Customer, error) {
	var result *model.Customer
	err := s.run(func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return db.ErrRecordNotFound
		}
		result = &c
		return nil
	})
	return result, err
}

func (s *Store) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.run(func(st *state) error {
		_, exists = st.customers[id]
		return nil
	})
	return exists, err
}

// product

func (s *Store) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.run(func(st *state) error {
		product.ID = st.nextID()
		product.CreatedAt = now()
		product.UpdatedAt = product.CreatedAt
		st.products[product.ID] = *product
		return nil
	})
}

func (s *Store) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var result *model.Product
	err := s.run(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return db.ErrRecordNotFound
		}
		result = &p
		return nil
	})
	return result, err
}

func (s *Store) GetActiveProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var result *model.Product
	err := s.run(func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.IsDeleted {
			return db.ErrRecordNotFound
		}
		result = &p
		return nil
	})
	return result, err
}

// GetProductByIDForUpdate 交易本身已獨佔整個 store，不需要額外的列鎖
func (s *Store) GetProductByIDForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	return s.GetProductByID(ctx, id)
}

func (s *Store) GetActiveProducts(ctx context.Context) ([]model.Product, error) {
	var result []model.Product
	err := s.run(func(st *state) error {
		for _, p := range st.products {
			if !p.IsDeleted {
				result = append(result, p)
			}
		}
		sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
		return nil
	})
	return result, err
}

func (s *Store) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.run(func(st *state) error {
		if _, ok := st.products[product.ID]; !ok {
			return db.ErrRecordNotFound
		}
		product.UpdatedAt = now()
		st.products[product.ID] = *product
		return nil
	})
}

func (s *Store) DeductProductStock(ctx context.Context, id int64, quantity int) (int, error) {
	var stock int
	err := s.run(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return db.ErrRecordNotFound
		}
		p.Stock -= quantity
		p.UpdatedAt = now()
		st.products[id] = p
		stock = p.Stock
		return nil
	})
	return stock, err
}

func (s *Store) MarkProductDeleted(ctx context.Context, id int64) error {
	return s.run(func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.IsDeleted {
			return db.ErrRecordNotFound
		}
		p.IsDeleted = true
		p.UpdatedAt = now()
		st.products[id] = p
		return nil
	})
}

// cart

func (s *Store) CreateCart(ctx context.Context, cart *model.Cart) error {
	return s.run(func(st *state) error {
		for _, c := range st.carts {
			if c.CustomerID == cart.CustomerID {
				return fmt.Errorf("cart of customer %d: %w", cart.CustomerID, db.ErrDuplicatedKey)
			}
		}
		cart.ID = st.nextID()
		cart.CreatedAt = now()
		cart.UpdatedAt = cart.CreatedAt
		stored := *cart
		stored.Items = nil
		st.carts[cart.ID] = stored
		return nil
	})
}

func (s *Store) GetCartByCustomerID(ctx context.Context, customerID int64) (*model.Cart, error) {
	var result *model.Cart
	err := s.run(func(st *state) error {
		for _, c := range st.carts {
			if c.CustomerID != customerID {
				continue
			}
			cart := c
			cart.Items = []model.CartItem{}
			for _, item := range st.cartItems {
				if item.CartID == cart.ID {
					cart.Items = append(cart.Items, item)
				}
			}
			sort.Slice(cart.Items, func(i, j int) bool { return cart.Items[i].ID < cart.Items[j].ID })
			result = &cart
			return nil
		}
		return db.ErrRecordNotFound
	})
	return result, err
}

func (s *Store) SaveCartItem(ctx context.Context, item *model.CartItem) error {
	return s.run(func(st *state) error {
		if _, ok := st.carts[item.CartID]; !ok {
			return fmt.Errorf("cart %d: %w", item.CartID, db.ErrRecordNotFound)
		}
		if item.ID == 0 {
			for _, existing := range st.cartItems {
				if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
					return fmt.Errorf("cart item product %d: %w", item.ProductID, db.ErrDuplicatedKey)
				}
			}
			item.ID = st.nextID()
			item.CreatedAt = now()
			item.UpdatedAt = item.CreatedAt
			st.cartItems[item.ID] = *item
			return nil
		}

		existing, ok := st.cartItems[item.ID]
		if !ok {
			return db.ErrRecordNotFound
		}
		existing.Quantity = item.Quantity
		existing.PriceAtTime = item.PriceAtTime
		existing.UpdatedAt = now()
		st.cartItems[item.ID] = existing
		return nil
	})
}

func (s *Store) DeleteCartItem(ctx context.Context, itemID int64) error {
	return s.run(func(st *state) error {
		delete(st.cartItems, itemID)
		return nil
	})
}

func (s *Store) ClearCartItems(ctx context.Context, cartID int64) error {
	return s.run(func(st *state) error {
		for id, item := range st.cartItems {
			if item.CartID == cartID {
				delete(st.cartItems, id)
			}
		}
		return nil
	})
}

func (s *Store) UpdateCartTotal(ctx context.Context, cartID int64, total decimal.Decimal) error {
	return s.run(func(st *state) error {
		cart, ok := st.carts[cartID]
		if !ok {
			return db.ErrRecordNotFound
		}
		cart.TotalPrice = total
		cart.UpdatedAt = now()
		st.carts[cartID] = cart
		return nil
	})
}

// order

func (s *Store) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.run(func(st *state) error {
		for _, o := range st.orders {
			if o.Code == order.Code {
				return fmt.Errorf("order code %s: %w", order.Code, db.ErrDuplicatedKey)
			}
		}
		order.ID = st.nextID()
		order.CreatedAt = now()
		order.UpdatedAt = order.CreatedAt
		for i := range order.Items {
			order.Items[i].ID = st.nextID()
			order.Items[i].OrderID = order.ID
			order.Items[i].CreatedAt = order.CreatedAt
			order.Items[i].UpdatedAt = order.CreatedAt
			st.orderItems[order.Items[i].ID] = order.Items[i]
		}
		stored := *order
		stored.Items = nil
		st.orders[order.ID] = stored
		return nil
	})
}

func (s *Store) GetOrderByCode(ctx context.Context, code string) (*model.Order, error) {
	var result *model.Order
	err := s.run(func(st *state) error {
		for _, o := range st.orders {
			if o.Code == code {
				order := st.loadOrder(o)
				result = &order
				return nil
			}
		}
		return db.ErrRecordNotFound
	})
	return result, err
}

func (s *Store) GetOrdersByCustomerID(ctx context.Context, customerID int64, page model.PageRequest) ([]model.Order, int64, error) {
	page = page.Normalize()
	var result []model.Order
	var total int64
	err := s.run(func(st *state) error {
		var matched []model.Order
		for _, o := range st.orders {
			if o.CustomerID == customerID {
				matched = append(matched, o)
			}
		}
		total = int64(len(matched))

		desc := page.Order == model.SortOrderDesc
		sort.Slice(matched, func(i, j int) bool {
			c := compareOrders(matched[i], matched[j], page.SortBy)
			if c == 0 {
				c = compareInt64(matched[i].ID, matched[j].ID)
			}
			if desc {
				return c > 0
			}
			return c < 0
		})

		start := page.Offset()
		if start < 0 || start >= len(matched) {
			return nil
		}
		end := start + page.Size
		if end > len(matched) {
			end = len(matched)
		}
		for _, o := range matched[start:end] {
			result = append(result, st.loadOrder(o))
		}
		return nil
	})
	return result, total, err
}

func (st *state) loadOrder(o model.Order) model.Order {
	o.Items = []model.OrderItem{}
	for _, item := range st.orderItems {
		if item.OrderID == o.ID {
			o.Items = append(o.Items, item)
		}
	}
	sort.Slice(o.Items, func(i, j int) bool { return o.Items[i].ID < o.Items[j].ID })
	return o
}

func compareOrders(a, b model.Order, column string) int {
	switch column {
	case "total_price":
		return a.TotalPrice.Cmp(b.TotalPrice)
	case "code":
		switch {
		case a.Code < b.Code:
			return -1
		case a.Code > b.Code:
			return 1
		}
		return 0
	case "id":
		return compareInt64(a.ID, b.ID)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

var _ db.UnifiedDB = (*Store)(nil)
