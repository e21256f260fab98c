package handler

import (
	"context"
	"net/http"

	"github.com/RoyceAzure/lab/cartorder/internal/api/dto"
	"github.com/RoyceAzure/lab/cartorder/internal/api/response"
	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/RoyceAzure/lab/cartorder/internal/service"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

// GET /carts/{customerId} 沒有購物車時建立一台空的
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := idParam(w, r, "customerId")
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, cart)
}

// POST /carts/add
func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cartService.AddProduct)
}

// POST /carts/reduce
func (h *CartHandler) ReduceProduct(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cartService.ReduceProduct)
}

// DELETE /carts/remove-item
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.cartService.RemoveItem)
}

// DELETE /carts/{customerId}
func (h *CartHandler) EmptyCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := idParam(w, r, "customerId")
	if !ok {
		return
	}

	if err := h.cartService.EmptyCart(r.Context(), customerID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, customerID, productID int64) (*model.Cart, error)) {
	var req dto.CartItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cart, err := op(r.Context(), req.CustomerID, req.ProductID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, cart)
}
