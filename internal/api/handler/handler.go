package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/cartorder/internal/api/dto"
	"github.com/RoyceAzure/lab/cartorder/internal/api/response"
	"github.com/RoyceAzure/lab/cartorder/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeCustomerNotFound  = "CUSTOMER_NOT_FOUND"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeOrderNotFound     = "ORDER_NOT_FOUND"
	CodeEmptyCart         = "EMPTY_CART"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeConflict          = "CONFLICT"
	CodeInternalError     = "INTERNAL_ERROR"
)

// writeServiceError 領域錯誤對應 4xx，其餘一律 500 且不外露細節
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrCustomerNotFound):
		response.ErrorJSON(w, r, http.StatusNotFound, CodeCustomerNotFound, err.Error())
	case errors.Is(err, service.ErrProductNotFound):
		response.ErrorJSON(w, r, http.StatusNotFound, CodeProductNotFound, err.Error())
	case errors.Is(err, service.ErrOrderNotFound):
		response.ErrorJSON(w, r, http.StatusNotFound, CodeOrderNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyCart):
		response.ErrorJSON(w, r, http.StatusBadRequest, CodeEmptyCart, err.Error())
	case errors.As(err, &stockErr):
		response.ErrorJSON(w, r, http.StatusBadRequest, CodeInsufficientStock,
			fmt.Sprintf("insufficient stock for product %s", stockErr.ProductName))
	case errors.Is(err, service.ErrInvalidArgument):
		response.ErrorJSON(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
	case errors.Is(err, service.ErrCustomerEmailExists):
		response.ErrorJSON(w, r, http.StatusConflict, CodeConflict, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected error")
		response.ErrorJSON(w, r, http.StatusInternalServerError, CodeInternalError, "internal server error")
	}
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.ErrorJSON(w, r, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return false
	}
	if err := dto.Validate(req); err != nil {
		response.ErrorJSON(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorJSON(w, r, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return id, true
}
