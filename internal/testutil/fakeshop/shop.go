// Package fakeshop is an in-memory stand-in for the eight commerce services,
// served from a single chi router. Tests point every base URL at one server
// and script faults per operation.
package fakeshop

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alexisbeaulieu97/shopflow/internal/config"
)

// Operation names a faultable endpoint.
type Operation string

const (
	OpAuthLogin       Operation = "auth_login"
	OpAuthRegister    Operation = "auth_register"
	OpAddressCreate   Operation = "address_create"
	OpCategoryCreate  Operation = "category_create"
	OpProductCreate   Operation = "product_create"
	OpOrderCreate     Operation = "order_create"
	OpPaymentCreate   Operation = "payment_create"
	OpAuthorize       Operation = "payment_authorize"
	OpCapture         Operation = "payment_capture"
	OpRefund          Operation = "payment_refund"
	OpStockCreate     Operation = "stock_create"
	OpStockAdjust     Operation = "stock_adjust"
	OpShipmentCreate  Operation = "shipment_create"
	OpShipmentUpdate  Operation = "shipment_update"
	OpDefaultShipping Operation = "address_default_shipping"
)

// Options configures the seeded accounts and the shared secret.
type Options struct {
	AdminEmail    string
	AdminPassword string
	ServiceSecret string
}

// Shop is the fake. All state sits behind one mutex.
type Shop struct {
	mu     sync.Mutex
	secret string
	tokens *tokenIssuer

	faults   map[Operation][]int
	calls    map[Operation]int
	idemKeys map[Operation][]string

	registerConflict bool
	categoryConflict bool

	users        map[string]*user
	refresh      map[string]string
	addresses    map[string][]*addressRecord
	categories   []*category
	products     []*product
	carts        map[string]*cart
	orders       []*order
	payments     map[string]*payment
	stock        map[string]*stockItem
	reservations map[string]*reservation
	shipments    []*shipment
}

// New builds a Shop with the admin account seeded. It panics only if key
// generation fails.
func New(opts Options) *Shop {
	if opts.AdminEmail == "" {
		opts.AdminEmail = config.DefaultAdminEmail
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = config.DefaultAdminPassword
	}
	if opts.ServiceSecret == "" {
		opts.ServiceSecret = config.DefaultServiceSecret
	}

	tokens, err := newTokenIssuer()
	if err != nil {
		panic(err)
	}

	s := &Shop{
		secret:       opts.ServiceSecret,
		tokens:       tokens,
		faults:       make(map[Operation][]int),
		calls:        make(map[Operation]int),
		idemKeys:     make(map[Operation][]string),
		users:        make(map[string]*user),
		refresh:      make(map[string]string),
		addresses:    make(map[string][]*addressRecord),
		carts:        make(map[string]*cart),
		payments:     make(map[string]*payment),
		stock:        make(map[string]*stockItem),
		reservations: make(map[string]*reservation),
	}
	s.addUser(opts.AdminEmail, opts.AdminPassword, "Admin", true)
	return s
}

// Start serves the shop on an httptest server closed at test cleanup and
// returns its URL.
func (s *Shop) Start(t testing.TB) string {
	t.Helper()
	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)
	return server.URL
}

// Config returns defaults with every service pointed at baseURL.
func Config(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Services = config.Services{
		Auth:      baseURL,
		User:      baseURL,
		Catalog:   baseURL,
		Cart:      baseURL,
		Order:     baseURL,
		Payment:   baseURL,
		Inventory: baseURL,
		Shipping:  baseURL,
	}
	cfg.Retry.Delay = 0
	return cfg
}

// Handler mounts every service route.
func (s *Shop) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		s.authRoutes(r)
		s.userRoutes(r)
		s.catalogRoutes(r)
		s.cartRoutes(r)
		s.orderRoutes(r)
		s.paymentRoutes(r)
		s.inventoryRoutes(r)
		s.shippingRoutes(r)
	})
	return r
}

// Respond queues statuses returned by op before it is handled normally.
func (s *Shop) Respond(op Operation, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = append(s.faults[op], statuses...)
}

// Decline makes op answer 402 for its next n calls.
func (s *Shop) Decline(op Operation, n int) {
	statuses := make([]int, n)
	for i := range statuses {
		statuses[i] = http.StatusPaymentRequired
	}
	s.Respond(op, statuses...)
}

// ConflictOnCategoryCreate makes category creation store the category but
// answer 409, as if a concurrent writer created it between lookup and create.
func (s *Shop) ConflictOnCategoryCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoryConflict = true
}

// ConflictOnRegister makes registration create the account but answer 409,
// as if a concurrent writer registered it first.
func (s *Shop) ConflictOnRegister() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerConflict = true
}

// SeedCustomer creates a non-admin account.
func (s *Shop) SeedCustomer(email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUser(email, password, "Seeded Customer", false).ID
}

// Calls reports how many requests reached op, faulted ones included.
func (s *Shop) Calls(op Operation) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// IdempotencyKeys lists the keys received by op in arrival order.
func (s *Shop) IdempotencyKeys(op Operation) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.idemKeys[op]...)
}

// Counts summarises stored resources for idempotence checks.
type Counts struct {
	Addresses  int
	Categories int
	Products   int
	StockItems int
}

// Counts returns the number of stored resources.
func (s *Shop) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	addresses := 0
	for _, list := range s.addresses {
		addresses += len(list)
	}
	return Counts{
		Addresses:  addresses,
		Categories: len(s.categories),
		Products:   len(s.products),
		StockItems: len(s.stock),
	}
}

// faulty counts the call and serves the next scripted status, if any.
func (s *Shop) faulty(op Operation, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[op]++
		var status int
		if queued := s.faults[op]; len(queued) > 0 {
			status = queued[0]
			s.faults[op] = queued[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			writeError(w, status, "injected fault")
			return
		}
		next(w, r)
	}
}

func (s *Shop) recordKey(op Operation, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idemKeys[op] = append(s.idemKeys[op], key)
}

func (s *Shop) requireSecret(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Service-Secret") != s.secret {
			writeError(w, http.StatusForbidden, "invalid service secret")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"status":        status,
		"error":         http.StatusText(status),
		"message":       message,
		"correlationId": uuid.NewString(),
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// page wraps items the way the paginated endpoints do.
func page(items any, total int) map[string]any {
	return map[string]any{"content": items, "totalElements": total}
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
