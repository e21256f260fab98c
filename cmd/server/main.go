package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/cartorder/internal/api"
	"github.com/RoyceAzure/lab/cartorder/internal/api/handler"
	"github.com/RoyceAzure/lab/cartorder/internal/api/middleware"
	"github.com/RoyceAzure/lab/cartorder/internal/api/router"
	"github.com/RoyceAzure/lab/cartorder/internal/appcontext"
	"github.com/RoyceAzure/lab/cartorder/internal/config"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/logger"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cf := config.GetConfig()
	appLogger := logger.Setup(cf.Env, cf.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := appcontext.NewApplicationContext(ctx, cf)
	if err != nil {
		log.Fatal().Err(err).Msg("init application failed")
	}

	server := api.NewServer(
		handler.NewCustomerHandler(app.CustomerService),
		handler.NewProductHandler(app.ProductService),
		handler.NewCartHandler(app.CartService),
		handler.NewOrderHandler(app.OrderService),
	)

	var limiter *middleware.RateLimiter
	if cf.RateLimitCapacity > 0 && cf.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cf.RateLimitCapacity, cf.RateLimitRPS)
	}

	// 設定服務器參數
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cf.ServerPort),
		Handler:           router.SetupRouter(server, appLogger, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 收到退出訊號或服務異常時關閉
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
		if err := app.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("application shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("closed completed")
}
