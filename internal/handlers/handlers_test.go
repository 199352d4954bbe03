package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/payment"
	"storefront/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fixture struct {
	router *gin.Engine
	bag    *cart.Store
}

// newFixture wires the storefront routes against a real catalog and a
// temp-file cart, with the remote API and processor stubbed by httptest.
func newFixture(t *testing.T, backendURL, processorURL string) *fixture {
	t.Helper()
	log := quietLogger()

	repo, err := catalog.Load()
	require.NoError(t, err)

	st, err := storage.Open(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	bag := cart.NewStore(st, log)

	backend := api.NewClient(backendURL, time.Second)
	confirmer := payment.NewHTTPConfirmer(processorURL, "pk_test", time.Second)
	orch := checkout.NewOrchestrator(backend, confirmer, bag, log)

	r := gin.New()
	r.GET("/products", GetProducts(repo, log))
	r.GET("/products/search", SearchProducts(repo, log))
	r.GET("/products/:id", GetProduct(repo, log))
	r.GET("/categories", GetCategories(repo, log))
	r.GET("/cart", GetCart(bag, log))
	r.POST("/cart", AddToCart(bag, repo, log))
	r.PUT("/cart/:id", UpdateCartItem(bag, log))
	r.DELETE("/cart/:id", RemoveCartItem(bag, log))
	r.DELETE("/cart", ClearCart(bag, log))
	r.POST("/checkout", SubmitCheckout(orch, log))

	return &fixture{router: r, bag: bag}
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestGetProductsSortsAndFilters(t *testing.T) {
	f := newFixture(t, "http://unused", "http://unused")

	w := f.do(http.MethodGet, "/products?sort=price-low&category=Earrings", "")
	require.Equal(t, http.StatusOK, w.Code)

	var products []catalog.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 6)
	for i, p := range products {
		assert.Equal(t, "Earrings", p.Category)
		if i > 0 {
			assert.GreaterOrEqual(t, p.PriceNumeric, products[i-1].PriceNumeric)
		}
	}
}

func TestGetProductByID(t *testing.T) {
	f := newFixture(t, "http://unused", "http://unused")

	w := f.do(http.MethodGet, "/products/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Pantheon"`)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/products/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/products/abc", "").Code)
}

func TestSearchProductsBlankQuery(t *testing.T) {
	f := newFixture(t, "http://unused", "http://unused")

	w := f.do(http.MethodGet, "/products/search?q=", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t, "http://unused", "http://unused")

	w := f.do(http.MethodPost, "/cart", `{"id":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	var state struct {
		TotalItems int   `json:"totalItems"`
		Subtotal   int64 `json:"subtotal"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 2, state.TotalItems)
	assert.Equal(t, int64(2*10450), state.Subtotal)

	// Omitted quantity means one.
	w = f.do(http.MethodPost, "/cart", `{"id":7}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 3, state.TotalItems)

	w = f.do(http.MethodPut, "/cart/1", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 1, state.TotalItems)

	w = f.do(http.MethodDelete, "/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 0, state.TotalItems)
}

func TestAddToCartRejectsBadInput(t *testing.T) {
	f := newFixture(t, "http://unused", "http://unused")

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/cart", `{"id":1,"quantity":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/cart", `{"quantity":2}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/cart", `{"id":999}`).Code)
	assert.Empty(t, f.bag.Items())
}

const checkoutBody = `{
	"customer": {"email":"ada@example.com","firstName":"Ada","lastName":"Byron"},
	"shippingAddress": {"address":"1 Marina Walk","city":"Dubai","country":"AE"},
	"shippingOption": "express",
	"card": {"number":"4242424242424242","expMonth":12,"expYear":2030,"cvc":"123"}
}`

func TestSubmitCheckoutHappyPath(t *testing.T) {
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/payments/create-payment-intent":
			w.Write([]byte(`{"success":true,"data":{"clientSecret":"pi_1_secret_2"}}`))
		case "/api/orders":
			w.Write([]byte(`{"success":true,"data":{"orderNumber":"SN-7"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer backendSrv.Close()

	processorSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"pi_1","status":"succeeded"}`))
	}))
	defer processorSrv.Close()

	f := newFixture(t, backendSrv.URL, processorSrv.URL)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart", `{"id":1,"quantity":2}`).Code)

	w := f.do(http.MethodPost, "/checkout", checkoutBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool             `json:"success"`
		Data    checkout.Receipt `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "SN-7", resp.Data.OrderNumber)
	assert.Equal(t, "pi_1", resp.Data.PaymentReference)
	assert.Empty(t, f.bag.Items())
}

func TestSubmitCheckoutValidationFailure(t *testing.T) {
	f := newFixture(t, "http://unused", "http://unused")
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart", `{"id":1}`).Code)

	body := strings.Replace(checkoutBody, `"city":"Dubai"`, `"city":""`, 1)
	w := f.do(http.MethodPost, "/checkout", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error)
	assert.Contains(t, resp.Details, "city is required")
}

func TestSubmitCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t, "http://unused", "http://unused")

	w := f.do(http.MethodPost, "/checkout", checkoutBody)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "your bag is empty")
}

func TestSubmitCheckoutDeclinedPayment(t *testing.T) {
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"clientSecret":"pi_1_secret_2"}}`))
	}))
	defer backendSrv.Close()

	processorSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	}))
	defer processorSrv.Close()

	f := newFixture(t, backendSrv.URL, processorSrv.URL)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart", `{"id":1}`).Code)

	w := f.do(http.MethodPost, "/checkout", checkoutBody)
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "Your card was declined.")
	assert.NotEmpty(t, f.bag.Items(), "a declined payment keeps the bag intact")
}

func TestSubmitCheckoutBackendRejection(t *testing.T) {
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"Failed to create payment intent."}`))
	}))
	defer backendSrv.Close()

	f := newFixture(t, backendSrv.URL, "http://unused")
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart", `{"id":1}`).Code)

	w := f.do(http.MethodPost, "/checkout", checkoutBody)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to create payment intent.")
}

func TestSubmitCheckoutBackendUnreachable(t *testing.T) {
	backendSrv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	backendSrv.Close()

	f := newFixture(t, backendSrv.URL, "http://unused")
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/cart", `{"id":1}`).Code)

	w := f.do(http.MethodPost, "/checkout", checkoutBody)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong. Please try again.")
}
