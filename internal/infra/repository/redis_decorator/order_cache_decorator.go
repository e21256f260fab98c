package redis_decorator

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/redis_repo"
	"github.com/rs/zerolog/log"
)

/*
訂單建立後不可變更，以代碼查詢的結果可以直接快取
redis 失敗只記錄 log，一律回到 db 查詢
分頁查詢會因新訂單而變動，不做快取
*/
type CacheAsideOrderRepo struct {
	db.IOrderRepository
	redis redis_repo.IOrderCacheRepository
}

func NewCacheAsideOrderRepo(dbRepo db.IOrderRepository, redis redis_repo.IOrderCacheRepository) db.IOrderRepository {
	if dbRepo == nil {
		panic("NewCacheAsideOrderRepo: db repo cannot be nil")
	}
	if redis == nil {
		panic("NewCacheAsideOrderRepo: redis repo cannot be nil")
	}
	return &CacheAsideOrderRepo{IOrderRepository: dbRepo, redis: redis}
}

func (o *CacheAsideOrderRepo) GetOrderByCode(ctx context.Context, code string) (*model.Order, error) {
	order, err := o.redis.GetOrder(ctx, code)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, redis_repo.ErrOrderCacheMiss) {
		log.Error().Err(err).Str("order_code", code).Msg("read order cache failed")
	}

	order, err = o.IOrderRepository.GetOrderByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := o.redis.SetOrder(ctx, order); err != nil {
		log.Error().Err(err).Str("order_code", code).Msg("write order cache failed")
	}
	return order, nil
}

// CacheOrder 交易 commit 後由呼叫端放入快取，讓第一次查詢就命中
// 失敗只記錄 log，下次查詢會從 db 讀回
func (o *CacheAsideOrderRepo) CacheOrder(ctx context.Context, order *model.Order) {
	if err := o.redis.SetOrder(ctx, order); err != nil {
		log.Error().Err(err).Str("order_code", order.Code).Msg("write order cache failed")
	}
}
