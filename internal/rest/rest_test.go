package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"kawaiiShop/business/blindbox"
	"kawaiiShop/business/modelproxy"
	"kawaiiShop/domain"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// asUser stands in for the auth middleware.
func asUser(id uint, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", id)
			c.Set("role", role)
			return next(c)
		}
	}
}

func request(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrProductNotFound, http.StatusNotFound},
		{fmt.Errorf("cart item 3: %w", domain.ErrProductNotFound), http.StatusNotFound},
		{domain.ErrOutOfStock, http.StatusConflict},
		{domain.ErrCategoryInUse, http.StatusConflict},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrInvalidCredential, http.StatusUnauthorized},
		{domain.Invalid("price must be greater than 0"), http.StatusBadRequest},
		{blindbox.ErrInvalidDistribution, http.StatusBadRequest},
		{modelproxy.ErrInvalidToken, http.StatusBadRequest},
		{fmt.Errorf("%w: timeout", modelproxy.ErrUpstream), http.StatusBadGateway},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

type fakeBlindBoxService struct {
	err       error
	gotUser   uint
	gotQty    int
	replaced  []domain.BlindBoxOutcome
	purchased domain.BlindBoxPurchase
}

func (f *fakeBlindBoxService) Purchase(_ context.Context, userID uint, productID uint64, quantity int) (domain.BlindBoxPurchase, error) {
	f.gotUser, f.gotQty = userID, quantity
	if f.err != nil {
		return domain.BlindBoxPurchase{}, f.err
	}
	return f.purchased, nil
}

func (f *fakeBlindBoxService) GetOutcomes(_ context.Context, productID uint64) ([]domain.BlindBoxOutcome, error) {
	return f.replaced, f.err
}

func (f *fakeBlindBoxService) ReplaceOutcomes(_ context.Context, productID uint64, outcomes []domain.BlindBoxOutcome) ([]domain.BlindBoxOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.replaced = outcomes
	return outcomes, nil
}

func blindBoxEcho(svc BlindBoxService) *echo.Echo {
	e := echo.New()
	h := NewBlindBoxHandler(svc)
	e.POST("/blindbox/:id/purchase", h.Purchase, asUser(7, domain.RoleCustomer))
	e.PUT("/products/:id/outcomes", h.ReplaceOutcomes, asUser(1, domain.RoleAdmin))
	return e
}

func TestBlindBoxPurchase_ResponseShape(t *testing.T) {
	svc := &fakeBlindBoxService{purchased: domain.BlindBoxPurchase{
		OrderID: 12,
		Items:   []domain.BlindBoxItem{{Name: "Bunny", Image: "bunny.png"}, {Name: "Star", Image: "star.png"}},
		Product: domain.BlindBoxProduct{ID: 3, Name: "Dreamy Box"},
	}}

	rec := request(blindBoxEcho(svc), http.MethodPost, "/blindbox/3/purchase", `{"quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.JSONEq(t, `{
		"order_id": 12,
		"items": [{"name":"Bunny","image":"bunny.png"},{"name":"Star","image":"star.png"}],
		"product": {"id":3,"name":"Dreamy Box"}
	}`, rec.Body.String())
	assert.Equal(t, uint(7), svc.gotUser)
	assert.Equal(t, 2, svc.gotQty)
}

func TestBlindBoxPurchase_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		err  error
		want int
	}{
		{"bad id", "/blindbox/x/purchase", `{"quantity":1}`, nil, http.StatusBadRequest},
		{"zero quantity", "/blindbox/3/purchase", `{"quantity":0}`, nil, http.StatusBadRequest},
		{"missing product", "/blindbox/3/purchase", `{"quantity":1}`, domain.ErrProductNotFound, http.StatusNotFound},
		{"not a blind box", "/blindbox/3/purchase", `{"quantity":1}`, domain.ErrNotBlindBox, http.StatusBadRequest},
		{"sold out", "/blindbox/3/purchase", `{"quantity":1}`, domain.ErrOutOfStock, http.StatusConflict},
		{"broken table", "/blindbox/3/purchase", `{"quantity":1}`, blindbox.ErrInvalidDistribution, http.StatusBadRequest},
		{"database down", "/blindbox/3/purchase", `{"quantity":1}`, errors.New("dial tcp: refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(blindBoxEcho(&fakeBlindBoxService{err: tt.err}), http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotContains(t, rec.Body.String(), "dial tcp")
		})
	}
}

func TestReplaceOutcomes_BindsTable(t *testing.T) {
	svc := &fakeBlindBoxService{}
	body := `{"outcomes":[{"name":"Bunny","image":"b.png","weight":3},{"name":"Ghost","weight":0}]}`

	rec := request(blindBoxEcho(svc), http.MethodPut, "/products/3/outcomes", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.replaced, 2)
	assert.Equal(t, 3.0, svc.replaced[0].Weight)
	assert.Equal(t, "Ghost", svc.replaced[1].Name)

	rec = request(blindBoxEcho(svc), http.MethodPut, "/products/3/outcomes", `{"outcomes":[{"name":"A","weight":-1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeProductService struct {
	filter domain.ProductFilter
}

func (f *fakeProductService) ListProducts(_ context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	f.filter = filter
	return domain.ProductPage{Products: []domain.Product{}, Page: 2, Limit: 5, Total: 11}, nil
}

func (f *fakeProductService) GetProductByID(_ context.Context, id uint64) (*domain.Product, error) {
	return nil, domain.ErrProductNotFound
}

func (f *fakeProductService) CreateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	return p, nil
}

func (f *fakeProductService) UpdateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	return p, nil
}

func (f *fakeProductService) DeleteProduct(_ context.Context, id uint64) error {
	return nil
}

func TestListProducts_BindsQuery(t *testing.T) {
	svc := &fakeProductService{}
	e := echo.New()
	h := NewProductHandler(svc)
	e.GET("/products", h.ListProducts)
	e.GET("/products/:id", h.GetProductByID)

	rec := request(e, http.MethodGet, "/products?category_id=4&q=bunny&min_price=2.5&max_price=30&sort=price_desc&page=2&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ProductFilter{
		CategoryID: 4,
		Query:      "bunny",
		MinPrice:   2.5,
		MaxPrice:   30,
		Sort:       domain.SortPriceDesc,
		Page:       2,
		Limit:      5,
	}, svc.filter)
	assert.JSONEq(t, `{"products":[],"page":2,"limit":5,"total":11}`, rec.Body.String())

	rec = request(e, http.MethodGet, "/products?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(e, http.MethodGet, "/products/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProduct_Validation(t *testing.T) {
	e := echo.New()
	e.POST("/products", NewProductHandler(&fakeProductService{}).CreateProduct)

	rec := request(e, http.MethodPost, "/products", `{"category_id":1,"name":"Cat","price":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(e, http.MethodPost, "/products", `{"category_id":1,"name":"Cat","price":12.5,"stock":3,"is_blind_box":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Product domain.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Product.IsBlindBox)
	assert.Equal(t, 3, body.Product.Stock)
}

type fakeOrdersService struct {
	isAdmin bool
	status  string
}

func (f *fakeOrdersService) Checkout(_ context.Context, userID uint) (domain.Order, error) {
	if userID == 99 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	return domain.Order{ID: 1, UserID: userID, OrderStatus: domain.OrderStatusPending}, nil
}

func (f *fakeOrdersService) ListOrders(_ context.Context, userID uint, isAdmin bool) ([]domain.Order, error) {
	f.isAdmin = isAdmin
	return []domain.Order{}, nil
}

func (f *fakeOrdersService) GetOrder(_ context.Context, userID uint, isAdmin bool, orderID uint64) (domain.Order, error) {
	return domain.Order{}, domain.ErrForbidden
}

func (f *fakeOrdersService) Pay(_ context.Context, userID uint, isAdmin bool, orderID uint64) (domain.Order, error) {
	return domain.Order{}, domain.ErrInvalidTransition
}

func (f *fakeOrdersService) Cancel(_ context.Context, userID uint, isAdmin bool, orderID uint64) (domain.Order, error) {
	return domain.Order{ID: orderID, OrderStatus: domain.OrderStatusCancelled}, nil
}

func (f *fakeOrdersService) UpdateStatus(_ context.Context, orderID uint64, status string) (domain.Order, error) {
	f.status = status
	return domain.Order{ID: orderID, OrderStatus: status}, nil
}

func TestOrdersHandler(t *testing.T) {
	svc := &fakeOrdersService{}
	h := NewOrdersHandler(svc)

	e := echo.New()
	e.POST("/orders/checkout", h.Checkout, asUser(7, domain.RoleCustomer))
	e.GET("/orders", h.GetAllOrders, asUser(1, domain.RoleAdmin))
	e.GET("/orders/:id", h.GetOrder, asUser(7, domain.RoleCustomer))
	e.POST("/orders/:id/pay", h.PayOrder, asUser(7, domain.RoleCustomer))
	e.POST("/orders/:id/cancel", h.CancelOrder, asUser(7, domain.RoleCustomer))
	e.PUT("/orders/:id/status", h.UpdateStatus, asUser(1, domain.RoleAdmin))

	empty := echo.New()
	empty.POST("/orders/checkout", h.Checkout, asUser(99, domain.RoleCustomer))

	assert.Equal(t, http.StatusCreated, request(e, http.MethodPost, "/orders/checkout", "").Code)
	assert.Equal(t, http.StatusBadRequest, request(empty, http.MethodPost, "/orders/checkout", "").Code)

	assert.Equal(t, http.StatusOK, request(e, http.MethodGet, "/orders", "").Code)
	assert.True(t, svc.isAdmin)

	assert.Equal(t, http.StatusForbidden, request(e, http.MethodGet, "/orders/5", "").Code)
	assert.Equal(t, http.StatusConflict, request(e, http.MethodPost, "/orders/5/pay", "").Code)
	assert.Equal(t, http.StatusOK, request(e, http.MethodPost, "/orders/5/cancel", "").Code)

	assert.Equal(t, http.StatusBadRequest, request(e, http.MethodPut, "/orders/5/status", `{}`).Code)
	assert.Equal(t, http.StatusOK, request(e, http.MethodPut, "/orders/5/status", `{"status":"SHIPPED"}`).Code)
	assert.Equal(t, "SHIPPED", svc.status)
}

type fakeModelProxy struct {
	err error
}

func (f fakeModelProxy) Fetch(_ context.Context, token string) (modelproxy.Asset, error) {
	if f.err != nil {
		return modelproxy.Asset{}, f.err
	}
	body := []byte("glTF-binary")
	return modelproxy.Asset{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentType:   "model/gltf-binary",
		ContentLength: int64(len(body)),
	}, nil
}

func TestModelProxy(t *testing.T) {
	newEcho := func(svc ModelProxyService) *echo.Echo {
		e := echo.New()
		e.GET("/models/proxy", NewModelProxyHandler(svc, time.Second).Proxy)
		return e
	}

	rec := request(newEcho(fakeModelProxy{}), http.MethodGet, "/models/proxy?token=abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "glTF-binary", rec.Body.String())
	assert.Equal(t, "model/gltf-binary", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = request(newEcho(fakeModelProxy{}), http.MethodGet, "/models/proxy", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(newEcho(fakeModelProxy{err: modelproxy.ErrInvalidToken}), http.MethodGet, "/models/proxy?token=zzz", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(newEcho(fakeModelProxy{err: fmt.Errorf("%w: 404", modelproxy.ErrUpstream)}), http.MethodGet, "/models/proxy?token=abc", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

type unreachableFetcher struct {
	t *testing.T
}

func (f unreachableFetcher) Fetch(_ context.Context, rawURL string) (modelproxy.Asset, error) {
	f.t.Errorf("fetch must not run for a rejected token, got %s", rawURL)
	return modelproxy.Asset{}, errors.New("unexpected fetch")
}

func TestModelProxy_ForgedTokens(t *testing.T) {
	svc := modelproxy.NewModelProxyService("0123456789abcdef0123456789abcdef", unreachableFetcher{t: t})
	other := modelproxy.NewModelProxyService("fedcba9876543210fedcba9876543210", unreachableFetcher{t: t})

	e := echo.New()
	e.Use(echomiddleware.Recover())
	e.GET("/models/proxy", NewModelProxyHandler(svc, time.Second).Proxy)

	foreign, err := other.Seal("https://cdn.example.com/models/bunny.glb")
	require.NoError(t, err)

	tokens := map[string]string{
		"other key":   foreign,
		"plain text":  "not-a-token",
		"bare base64": "QUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUE=",
		"forged tag":  "QUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUE=." + strings.Repeat("ab", 32),
	}

	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			rec := request(e, http.MethodGet, "/models/proxy?token="+url.QueryEscape(token), "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
