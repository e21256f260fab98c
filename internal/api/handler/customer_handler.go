package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/cartorder/internal/api/dto"
	"github.com/RoyceAzure/lab/cartorder/internal/api/response"
	"github.com/RoyceAzure/lab/cartorder/internal/service"
)

type CustomerHandler struct {
	customerService service.ICustomerService
}

func NewCustomerHandler(customerService service.ICustomerService) *CustomerHandler {
	if customerService == nil {
		panic("customerService cannot be nil")
	}
	return &CustomerHandler{customerService: customerService}
}

// POST /customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.customerService.CreateCustomer(r.Context(), req.Name, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusCreated, customer)
}

// GET /customers/{id}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, customer)
}
