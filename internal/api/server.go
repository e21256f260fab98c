package api

import "github.com/RoyceAzure/lab/cartorder/internal/api/handler"

type Server struct {
	CustomerHandler *handler.CustomerHandler
	ProductHandler  *handler.ProductHandler
	CartHandler     *handler.CartHandler
	OrderHandler    *handler.OrderHandler
}

func NewServer(customerHandler *handler.CustomerHandler, productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler, orderHandler *handler.OrderHandler) *Server {
	return &Server{
		CustomerHandler: customerHandler,
		ProductHandler:  productHandler,
		CartHandler:     cartHandler,
		OrderHandler:    orderHandler,
	}
}
