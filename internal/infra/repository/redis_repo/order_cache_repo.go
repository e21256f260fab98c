package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

var ErrOrderCacheMiss = errors.New("order cache miss")

const orderKeyPrefix = "cartorder:order:code:"

// IOrderCacheRepository 訂單建立後不會再變動，快取不需要失效處理，只靠 TTL 回收
type IOrderCacheRepository interface {
	GetOrder(ctx context.Context, code string) (*model.Order, error)
	SetOrder(ctx context.Context, order *model.Order) error
}

/*
結構:

	cartorder:order:code:{訂單代碼}: json(order 含 items)
*/
type OrderCacheRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOrderCacheRepo(client *redis.Client, ttl time.Duration) *OrderCacheRepo {
	if client == nil {
		panic("order cache repo redis client is nil")
	}
	return &OrderCacheRepo{client: client, ttl: ttl}
}

func orderKey(code string) string {
	return orderKeyPrefix + code
}

// GetOrder 沒有快取時回傳 ErrOrderCacheMiss
func (r *OrderCacheRepo) GetOrder(ctx context.Context, code string) (*model.Order, error) {
	data, err := r.client.Get(ctx, orderKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrOrderCacheMiss
		}
		return nil, fmt.Errorf("get order cache failed: %w", err)
	}

	var order model.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("unmarshal order cache failed: %w", err)
	}
	return &order, nil
}

func (r *OrderCacheRepo) SetOrder(ctx context.Context, order *model.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order failed: %w", err)
	}
	return r.client.Set(ctx, orderKey(order.Code), data, r.ttl).Err()
}

var _ IOrderCacheRepository = (*OrderCacheRepo)(nil)
