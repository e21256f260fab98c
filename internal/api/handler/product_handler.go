package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/cartorder/internal/api/dto"
	"github.com/RoyceAzure/lab/cartorder/internal/api/response"
	"github.com/RoyceAzure/lab/cartorder/internal/service"
)

type ProductHandler struct {
	productService service.IProductService
}

func NewProductHandler(productService service.IProductService) *ProductHandler {
	if productService == nil {
		panic("productService cannot be nil")
	}
	return &ProductHandler{productService: productService}
}

func toProductParams(req dto.ProductRequest) service.ProductParams {
	return service.ProductParams{Name: req.Name, Price: req.Price, Stock: req.Stock}
}

// POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), toProductParams(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusCreated, product)
}

// GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, products)
}

// GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, product)
}

// PUT /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), id, toProductParams(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, product)
}

// DELETE /products/{id} 軟刪除
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.productService.MarkDeleted(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
