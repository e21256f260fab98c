package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/cartorder/internal/api"
	"github.com/RoyceAzure/lab/cartorder/internal/api/handler"
	m "github.com/RoyceAzure/lab/cartorder/internal/api/middleware"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/producer"
	"github.com/RoyceAzure/lab/cartorder/internal/infra/repository/memdb"
	"github.com/RoyceAzure/lab/cartorder/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Path    string `json:"path"`
	} `json:"error"`
}

type RouterTestSuite struct {
	suite.Suite
	srv *httptest.Server
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (suite *RouterTestSuite) SetupTest() {
	store := memdb.NewStore()
	publisher := producer.NoopProducer{}
	customerService := service.NewCustomerService(store)
	productService := service.NewProductService(store, publisher)
	cartService := service.NewCartService(store)
	orderService := service.NewOrderService(store, store, productService, publisher)

	server := api.NewServer(
		handler.NewCustomerHandler(customerService),
		handler.NewProductHandler(productService),
		handler.NewCartHandler(cartService),
		handler.NewOrderHandler(orderService),
	)
	suite.srv = httptest.NewServer(SetupRouter(server, zerolog.Nop(), nil))
}

func (suite *RouterTestSuite) TearDownTest() {
	suite.srv.Close()
}

func (suite *RouterTestSuite) do(method, path string, body any) (int, envelope) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, suite.srv.URL+"/api/v1"+path, reader)
	require.NoError(suite.T(), err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(suite.T(), err)
	if len(raw) > 0 {
		require.NoError(suite.T(), json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (suite *RouterTestSuite) createCustomer(email string) int64 {
	status, env := suite.do(http.MethodPost, "/customers", map[string]any{"name": "royce", "email": email})
	require.Equal(suite.T(), http.StatusCreated, status)
	var customer struct {
		ID int64 `json:"id"`
	}
	require.NoError(suite.T(), json.Unmarshal(env.Data, &customer))
	return customer.ID
}

func (suite *RouterTestSuite) createProduct(name string, price string, stock int) int64 {
	status, env := suite.do(http.MethodPost, "/products", map[string]any{"name": name, "price": price, "stock": stock})
	require.Equal(suite.T(), http.StatusCreated, status)
	var product struct {
		ID int64 `json:"id"`
	}
	require.NoError(suite.T(), json.Unmarshal(env.Data, &product))
	return product.ID
}

func (suite *RouterTestSuite) TestCartToOrderFlow() {
	customerID := suite.createCustomer("a@example.com")
	productID := suite.createProduct("pen", "10.00", 5)

	for i := 0; i < 2; i++ {
		status, _ := suite.do(http.MethodPost, "/carts/add", map[string]any{"customer_id": customerID, "product_id": productID})
		require.Equal(suite.T(), http.StatusOK, status)
	}

	status, env := suite.do(http.MethodGet, fmt.Sprintf("/carts/%d", customerID), nil)
	require.Equal(suite.T(), http.StatusOK, status)
	var cart struct {
		TotalPrice string `json:"total_price"`
		Items      []struct {
			Quantity int `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(suite.T(), json.Unmarshal(env.Data, &cart))
	require.Equal(suite.T(), "20", cart.TotalPrice)
	require.Len(suite.T(), cart.Items, 1)
	require.Equal(suite.T(), 2, cart.Items[0].Quantity)

	status, env = suite.do(http.MethodPost, fmt.Sprintf("/orders/%d", customerID), nil)
	require.Equal(suite.T(), http.StatusCreated, status)
	var order struct {
		Code       string `json:"code"`
		TotalPrice string `json:"total_price"`
	}
	require.NoError(suite.T(), json.Unmarshal(env.Data, &order))
	require.Regexp(suite.T(), `^ORDER-[0-9A-F]{8}$`, order.Code)

	status, env = suite.do(http.MethodGet, "/orders/"+order.Code, nil)
	require.Equal(suite.T(), http.StatusOK, status)

	status, env = suite.do(http.MethodGet, fmt.Sprintf("/orders/list/%d?page=0&size=10&sort=createdAt,desc", customerID), nil)
	require.Equal(suite.T(), http.StatusOK, status)
	var page struct {
		TotalItems int64 `json:"total_items"`
		Size       int   `json:"size"`
	}
	require.NoError(suite.T(), json.Unmarshal(env.Data, &page))
	require.Equal(suite.T(), int64(1), page.TotalItems)
	require.Equal(suite.T(), 10, page.Size)

	// 購物車已清空
	status, env = suite.do(http.MethodPost, fmt.Sprintf("/orders/%d", customerID), nil)
	require.Equal(suite.T(), http.StatusBadRequest, status)
	require.Equal(suite.T(), handler.CodeEmptyCart, env.Error.Code)
}

func (suite *RouterTestSuite) TestErrorMapping() {
	customerID := suite.createCustomer("a@example.com")
	productID := suite.createProduct("pen", "10.00", 1)

	status, env := suite.do(http.MethodGet, "/customers/999", nil)
	require.Equal(suite.T(), http.StatusNotFound, status)
	require.Equal(suite.T(), handler.CodeCustomerNotFound, env.Error.Code)
	require.Equal(suite.T(), "/api/v1/customers/999", env.Error.Path)

	status, env = suite.do(http.MethodGet, "/orders/ORDER-NOPE0000", nil)
	require.Equal(suite.T(), http.StatusNotFound, status)
	require.Equal(suite.T(), handler.CodeOrderNotFound, env.Error.Code)

	status, env = suite.do(http.MethodPost, "/carts/add", map[string]any{"customer_id": customerID, "product_id": 999})
	require.Equal(suite.T(), http.StatusNotFound, status)
	require.Equal(suite.T(), handler.CodeProductNotFound, env.Error.Code)

	status, env = suite.do(http.MethodPost, "/carts/reduce", map[string]any{"customer_id": customerID, "product_id": productID})
	require.Equal(suite.T(), http.StatusBadRequest, status)
	require.Equal(suite.T(), handler.CodeEmptyCart, env.Error.Code)

	status, _ = suite.do(http.MethodPost, "/carts/add", map[string]any{"customer_id": customerID, "product_id": productID})
	require.Equal(suite.T(), http.StatusOK, status)
	status, env = suite.do(http.MethodPost, "/carts/add", map[string]any{"customer_id": customerID, "product_id": productID})
	require.Equal(suite.T(), http.StatusBadRequest, status)
	require.Equal(suite.T(), handler.CodeInsufficientStock, env.Error.Code)
	require.Contains(suite.T(), env.Error.Message, "pen")

	status, env = suite.do(http.MethodPost, "/products", map[string]any{"name": "free", "price": "0", "stock": 1})
	require.Equal(suite.T(), http.StatusBadRequest, status)
	require.Equal(suite.T(), handler.CodeBadRequest, env.Error.Code)

	status, env = suite.do(http.MethodPost, "/products", map[string]any{"name": "cheap", "price": "0.50", "stock": 1})
	require.Equal(suite.T(), http.StatusBadRequest, status)
	require.Equal(suite.T(), handler.CodeBadRequest, env.Error.Code)

	status, env = suite.do(http.MethodGet, fmt.Sprintf("/orders/list/%d?sort=name,asc", customerID), nil)
	require.Equal(suite.T(), http.StatusBadRequest, status)
	require.Equal(suite.T(), handler.CodeBadRequest, env.Error.Code)

	status, env = suite.do(http.MethodGet, fmt.Sprintf("/orders/list/%d?page=%d", customerID, int64(math.MaxInt64/20+1)), nil)
	require.Equal(suite.T(), http.StatusBadRequest, status)
	require.Equal(suite.T(), handler.CodeBadRequest, env.Error.Code)

	status, _ = suite.do(http.MethodGet, "/customers/abc", nil)
	require.Equal(suite.T(), http.StatusBadRequest, status)

	status, env = suite.do(http.MethodPost, "/customers", map[string]any{"name": "dup", "email": "a@example.com"})
	require.Equal(suite.T(), http.StatusConflict, status)
	require.Equal(suite.T(), handler.CodeConflict, env.Error.Code)
}

func (suite *RouterTestSuite) TestProductLifecycle() {
	productID := suite.createProduct("pen", "10.00", 5)

	status, _ := suite.do(http.MethodPut, fmt.Sprintf("/products/%d", productID), map[string]any{"name": "blue pen", "price": "12.50", "stock": 3})
	require.Equal(suite.T(), http.StatusOK, status)

	status, env := suite.do(http.MethodGet, fmt.Sprintf("/products/%d", productID), nil)
	require.Equal(suite.T(), http.StatusOK, status)
	var product struct {
		Name  string `json:"name"`
		Price string `json:"price"`
	}
	require.NoError(suite.T(), json.Unmarshal(env.Data, &product))
	require.Equal(suite.T(), "blue pen", product.Name)
	require.Equal(suite.T(), "12.5", product.Price)

	status, _ = suite.do(http.MethodDelete, fmt.Sprintf("/products/%d", productID), nil)
	require.Equal(suite.T(), http.StatusNoContent, status)

	status, _ = suite.do(http.MethodGet, fmt.Sprintf("/products/%d", productID), nil)
	require.Equal(suite.T(), http.StatusNotFound, status)

	status, env = suite.do(http.MethodGet, "/products", nil)
	require.Equal(suite.T(), http.StatusOK, status)
	require.JSONEq(suite.T(), `[]`, string(env.Data))
}

func (suite *RouterTestSuite) TestRemoveItemAndEmptyCart() {
	customerID := suite.createCustomer("a@example.com")
	pen := suite.createProduct("pen", "10.00", 5)
	book := suite.createProduct("book", "2.50", 5)

	suite.do(http.MethodPost, "/carts/add", map[string]any{"customer_id": customerID, "product_id": pen})
	suite.do(http.MethodPost, "/carts/add", map[string]any{"customer_id": customerID, "product_id": book})

	status, env := suite.do(http.MethodDelete, "/carts/remove-item", map[string]any{"customer_id": customerID, "product_id": pen})
	require.Equal(suite.T(), http.StatusOK, status)
	var cart struct {
		TotalPrice string `json:"total_price"`
	}
	require.NoError(suite.T(), json.Unmarshal(env.Data, &cart))
	require.Equal(suite.T(), "2.5", cart.TotalPrice)

	status, _ = suite.do(http.MethodDelete, fmt.Sprintf("/carts/%d", customerID), nil)
	require.Equal(suite.T(), http.StatusNoContent, status)
}

func TestSetupRouter_RateLimit(t *testing.T) {
	store := memdb.NewStore()
	server := api.NewServer(
		handler.NewCustomerHandler(service.NewCustomerService(store)),
		handler.NewProductHandler(service.NewProductService(store, producer.NoopProducer{})),
		handler.NewCartHandler(service.NewCartService(store)),
		handler.NewOrderHandler(service.NewOrderService(store, store,
			service.NewProductService(store, producer.NoopProducer{}), producer.NoopProducer{})),
	)
	r := SetupRouter(server, zerolog.Nop(), m.NewRateLimiter(1, 1))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}
