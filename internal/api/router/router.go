package router

import (
	"github.com/RoyceAzure/lab/cartorder/internal/api"
	m "github.com/RoyceAzure/lab/cartorder/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// limiter 為 nil 時不限流
func SetupRouter(server *api.Server, logger zerolog.Logger, limiter *m.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	if limiter != nil {
		r.Use(m.RateLimitMiddleware(limiter))
	}

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Post("/", server.CustomerHandler.CreateCustomer)
			r.Get("/{id}", server.CustomerHandler.GetCustomer)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", server.ProductHandler.CreateProduct)
			r.Get("/", server.ProductHandler.ListProducts)
			r.Get("/{id}", server.ProductHandler.GetProduct)
			r.Put("/{id}", server.ProductHandler.UpdateProduct)
			r.Delete("/{id}", server.ProductHandler.DeleteProduct)
		})

		r.Route("/carts", func(r chi.Router) {
			r.Post("/add", server.CartHandler.AddProduct)
			r.Post("/reduce", server.CartHandler.ReduceProduct)
			r.Delete("/remove-item", server.CartHandler.RemoveItem)
			r.Get("/{customerId}", server.CartHandler.GetCart)
			r.Delete("/{customerId}", server.CartHandler.EmptyCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/{customerId}", server.OrderHandler.PlaceOrder)
			r.Get("/list/{customerId}", server.OrderHandler.ListOrders)
			r.Get("/{orderCode}", server.OrderHandler.GetOrderByCode)
		})
	})
	return r
}
