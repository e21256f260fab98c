package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/RoyceAzure/lab/cartorder/internal/api/response"
	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/RoyceAzure/lab/cartorder/internal/service"
	"github.com/go-chi/chi/v5"
)

// camelCase 排序欄位對應到資料表欄位
var sortFieldAlias = map[string]string{
	"createdAt":  "created_at",
	"totalPrice": "total_price",
}

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{orderService: orderService}
}

// POST /orders/{customerId}
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	customerID, ok := idParam(w, r, "customerId")
	if !ok {
		return
	}

	order, err := h.orderService.PlaceOrder(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusCreated, order)
}

// GET /orders/list/{customerId}?page=0&size=20&sort=created_at,desc
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID, ok := idParam(w, r, "customerId")
	if !ok {
		return
	}
	page, ok := parsePageRequest(w, r)
	if !ok {
		return
	}

	result, err := h.orderService.GetAllOrdersForCustomer(r.Context(), customerID, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, result)
}

// GET /orders/{orderCode}
func (h *OrderHandler) GetOrderByCode(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrderByCode(r.Context(), chi.URLParam(r, "orderCode"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, order)
}

// parsePageRequest 不合法的排序欄位或方向回 400，不默默改用預設值
func parsePageRequest(w http.ResponseWriter, r *http.Request) (model.PageRequest, bool) {
	page := model.DefaultPageRequest()
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > model.MaxPage {
			response.ErrorJSON(w, r, http.StatusBadRequest, CodeBadRequest, "invalid page")
			return page, false
		}
		page.Page = n
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > model.MaxPageSize {
			response.ErrorJSON(w, r, http.StatusBadRequest, CodeBadRequest, "invalid size")
			return page, false
		}
		page.Size = n
	}
	if v := q.Get("sort"); v != "" {
		field, dir, _ := strings.Cut(v, ",")
		field = strings.TrimSpace(field)
		if alias, ok := sortFieldAlias[field]; ok {
			field = alias
		}
		if !model.IsSortableOrderColumn(field) {
			response.ErrorJSON(w, r, http.StatusBadRequest, CodeBadRequest, "invalid sort field")
			return page, false
		}
		page.SortBy = field

		if dir = strings.ToLower(strings.TrimSpace(dir)); dir != "" {
			if !model.IsValidSortOrderEnum(dir) {
				response.ErrorJSON(w, r, http.StatusBadRequest, CodeBadRequest, "invalid sort direction")
				return page, false
			}
			page.Order = model.SortOrderEnum(dir)
		}
	}
	return page, true
}
