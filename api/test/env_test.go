package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/storefront/api"
	"github.com/irsalhamdi/storefront/backend"
	"github.com/irsalhamdi/storefront/cartstore"
	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/checkout"
	"github.com/irsalhamdi/storefront/core/order"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/payment"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

// TestEnv wires the full mux against a mock commerce backend and a
// mock tokenization service, with the cart persisted on disk in a
// temp dir.
type TestEnv struct {
	URL     string
	Backend *backendMock
	Stripe  *stripeMock
	Token   string

	client *http.Client
}

func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.ErrorLevel)

	bm := newBackendMock()
	backendSrv := httptest.NewServer(bm.routes())
	t.Cleanup(backendSrv.Close)

	sm := &stripeMock{}
	stripeSrv := httptest.NewServer(sm.routes())
	t.Cleanup(stripeSrv.Close)

	b := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL: stripe.String(stripeSrv.URL),
	})
	stripeAPI := &stripecl.API{}
	stripeAPI.Init("sk_test_storefront", &stripe.Backends{API: b, Connect: b, Uploads: b})

	kv, err := cartstore.NewFileKV(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := cart.NewStore(kv, log)

	apiClient := backend.NewClient(backendSrv.URL, 5*time.Second, log)
	orch := checkout.NewOrchestrator(payment.NewStripe(stripeAPI), apiClient, store, log)

	lm := rate.NewLimiter(100, time.Hour, 100)
	t.Cleanup(lm.Stop)

	session := scs.New()
	session.Lifetime = time.Hour

	srv := httptest.NewServer(api.APIMux(api.APIConfig{
		Log:      log,
		Session:  session,
		Store:    store,
		Backend:  apiClient,
		Checkout: orch,
		Limiter:  lm,
	}))
	t.Cleanup(srv.Close)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "shopper-1",
		"roles": []string{"USER"},
	}).SignedString([]byte("storefront-test"))
	if err != nil {
		t.Fatal(err)
	}

	env := &TestEnv{
		URL:     srv.URL,
		Backend: bm,
		Stripe:  sm,
		Token:   token,
	}
	env.ResetClient(t)
	return env
}

// ResetClient swaps in a fresh cookie jar, simulating a new browser
// session.
func (env *TestEnv) ResetClient(t *testing.T) {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	env.client = &http.Client{Jar: jar}
}

// do sends one request, attaching the bearer token when given, and
// decodes the reply into out when out is not nil.
func (env *TestEnv) do(t *testing.T, method, path, token string, in, out any) int {
	t.Helper()

	var body *bytes.Buffer
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}

	r, err := http.NewRequest(method, env.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	if in != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w, err := env.client.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if out != nil {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s reply: %v", method, path, err)
		}
	}
	return w.StatusCode
}

// backendMock is the remote commerce API: a fixed catalog plus an
// order book that records submissions.
type backendMock struct {
	mu           sync.Mutex
	products     []product.Product
	status       order.Status
	orders       []order.Order
	keys         map[string]bool
	catalogAuthz string
}

func newBackendMock() *backendMock {
	return &backendMock{
		products: []product.Product{
			{ProductID: 1, Name: "mug", Description: "a mug", Price: decimal.RequireFromString("10.00"), StockQuantity: 5},
			{ProductID: 2, Name: "shirt", Description: "a shirt", Price: decimal.RequireFromString("24.50"), StockQuantity: 3},
		},
		status: order.Paid,
		keys:   make(map[string]bool),
	}
}

func (m *backendMock) SetStatus(s order.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = s
}

func (m *backendMock) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// CatalogAuthz reports the Authorization header of the most recent
// catalog request.
func (m *backendMock) CatalogAuthz() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalogAuthz
}

func (m *backendMock) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/products", m.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", m.showProduct).Methods(http.MethodGet)
	r.HandleFunc("/orders", m.createOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders/me", m.listOrders).Methods(http.MethodGet)
	return r
}

func (m *backendMock) listProducts(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogAuthz = r.Header.Get("Authorization")
	json.NewEncoder(w).Encode(m.products)
}

func (m *backendMock) showProduct(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogAuthz = r.Header.Get("Authorization")

	for _, p := range m.products {
		if mux.Vars(r)["id"] == strconv.FormatInt(p.ProductID, 10) {
			json.NewEncoder(w).Encode(p)
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"product not found"}`))
}

func (m *backendMock) createOrder(w http.ResponseWriter, r *http.Request) {
	if !bearer(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if r.Header.Get("Idempotency-Key") == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"missing idempotency key"}`))
		return
	}

	var in order.New
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[r.Header.Get("Idempotency-Key")] = true

	o := order.Order{
		OrderID:   int64(len(m.orders) + 1),
		OrderDate: time.Now().UTC(),
		Status:    m.status,
	}
	for _, it := range in.Items {
		for _, p := range m.products {
			if p.ProductID == it.ProductID {
				o.Items = append(o.Items, order.Item{
					OrderItemID: int64(len(o.Items) + 1),
					ProductName: p.Name,
					Quantity:    it.Quantity,
					UnitPrice:   p.Price,
				})
				o.TotalAmount = o.TotalAmount.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			}
		}
	}
	m.orders = append(m.orders, o)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order.Created{OrderID: o.OrderID, Status: m.status})
}

func (m *backendMock) listOrders(w http.ResponseWriter, r *http.Request) {
	if !bearer(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	json.NewEncoder(w).Encode(m.orders)
}

func bearer(r *http.Request) bool {
	return len(r.Header.Get("Authorization")) > len("Bearer ")
}

// stripeMock is the tokenization service; flip Decline to have it
// reject cards with a card error.
type stripeMock struct {
	mu      sync.Mutex
	decline bool
	calls   int
}

func (m *stripeMock) SetDecline(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decline = v
}

func (m *stripeMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *stripeMock) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1/payment_methods", func(w http.ResponseWriter, req *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.calls++

		w.Header().Set("Content-Type", "application/json")
		if m.decline {
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
			return
		}
		w.Write([]byte(`{"id":"pm_test_env","object":"payment_method"}`))
	}).Methods(http.MethodPost)
	return r
}
