package appcontext

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/cartorder/internal/config"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/producer"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/memdb"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/redis_decorator"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/cartorder/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type closer interface {
	Close() error
}

// EventProducer 關閉時需要 flush 的事件發送者
type EventProducer interface {
	service.EventPublisher
	closer
}

type ApplicationContext struct {
	Cf              *config.Config
	DbRepo          db.UnifiedDB
	dbCloser        closer
	RedisClient     *redis.Client
	OrderReader     db.IOrderRepository
	Producer        EventProducer
	CustomerService service.ICustomerService
	ProductService  *service.ProductService
	CartService     service.ICartService
	OrderService    service.IOrderService
}

func NewApplicationContext(ctx context.Context, cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	log.Info().
		Str("env", cf.Env).
		Str("db_driver", cf.DbDriver).
		Str("redis_addr", cf.RedisAddr).
		Str("kafka_brokers", cf.KafkaBrokers).
		Msg("application config")

	if err := app.Init(ctx); err != nil {
		// 已建立的連線要釋放
		app.closeAll()
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init(ctx context.Context) error {
	if err := app.setUpDb(); err != nil {
		return err
	}
	if err := app.setUpOrderReader(ctx); err != nil {
		return err
	}
	app.setUpProducer()
	app.setUpServices()
	return nil
}

func (app *ApplicationContext) setUpDb() error {
	log.Info().Msg("Start setup database")
	switch app.Cf.DbDriver {
	case config.DbDriverMemory:
		store := memdb.NewStore()
		app.DbRepo = store
		app.dbCloser = store
	default:
		conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
		if err != nil {
			return err
		}
		unifiedDB := db.NewUnifiedDB(conn)
		app.dbCloser = unifiedDB
		if err := unifiedDB.InitMigrate(); err != nil {
			return fmt.Errorf("migrate database failed: %w", err)
		}
		app.DbRepo = unifiedDB
	}
	log.Info().Msg("Finish setup database")
	return nil
}

// setUpOrderReader 有設定 REDIS_ADDR 才使用快取
func (app *ApplicationContext) setUpOrderReader(ctx context.Context) error {
	app.OrderReader = app.DbRepo
	if app.Cf.RedisAddr == "" {
		return nil
	}

	log.Info().Msg("Start setup redis order cache")
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := redis_repo.NewRedisClient(pingCtx, app.Cf.RedisAddr,
		redis_repo.WithPassword(app.Cf.RedisPassword),
		redis_repo.WithDB(app.Cf.RedisDB),
	)
	if err != nil {
		return err
	}
	app.RedisClient = client
	app.OrderReader = redis_decorator.NewCacheAsideOrderRepo(app.DbRepo, redis_repo.NewOrderCacheRepo(client, app.Cf.OrderCacheTTL))
	log.Info().Msg("Finish setup redis order cache")
	return nil
}

// setUpProducer 沒有設定 KAFKA_BROKERS 時事件直接丟棄
func (app *ApplicationContext) setUpProducer() {
	brokers := producer.ParseBrokers(app.Cf.KafkaBrokers)
	if len(brokers) == 0 {
		app.Producer = producer.NoopProducer{}
		return
	}
	app.Producer = producer.NewEventProducer(producer.NewKafkaWriter(brokers, app.Cf.KafkaOrderTopic))
}

func (app *ApplicationContext) setUpServices() {
	app.CustomerService = service.NewCustomerService(app.DbRepo)
	app.ProductService = service.NewProductService(app.DbRepo, app.Producer)
	app.CartService = service.NewCartService(app.DbRepo)
	app.OrderService = service.NewOrderService(app.DbRepo, app.OrderReader, app.ProductService, app.Producer)
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Info().Msg("Start application shutdown")

	done := make(chan error, 1)
	go func() {
		done <- app.closeAll()
	}()

	select {
	case err := <-done:
		log.Info().Msg("Application shutdown complete")
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

// closeAll producer 先關，確保 flush 完事件
func (app *ApplicationContext) closeAll() error {
	var errs []error
	if app.Producer != nil {
		if err := app.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close producer: %w", err))
		}
	}
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if app.dbCloser != nil {
		if err := app.dbCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
