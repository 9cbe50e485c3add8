package fakeshop

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type product struct {
	ID              string          `json:"id"`
	SellerID        string          `json:"sellerId"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	BasePrice       decimal.Decimal `json:"basePrice"`
	CategoryID      string          `json:"categoryId"`
	AvailableSizes  []string        `json:"availableSizes"`
	AvailableColors []string        `json:"availableColors"`
	StockPerVariant map[string]int  `json:"stockPerVariant"`
	ImageURLs       []string        `json:"imageUrls"`
}

func (s *Shop) catalogRoutes(r chi.Router) {
	r.Get("/categories", s.listCategories)
	r.Post("/categories", s.faulty(OpCategoryCreate, s.adminOnly(s.createCategory)))
	r.Get("/products", s.listProducts)
	r.Post("/products", s.faulty(OpProductCreate, s.adminOnly(s.createProduct)))
}

func (s *Shop) listCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	list := append([]*category{}, s.categories...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (s *Shop) createCategory(w http.ResponseWriter, r *http.Request, _ *user) {
	var req category
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == req.Name {
			writeError(w, http.StatusConflict, "category already exists")
			return
		}
	}
	req.ID = uuid.NewString()
	s.categories = append(s.categories, &req)
	if s.categoryConflict {
		writeError(w, http.StatusConflict, "category already exists")
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Shop) listProducts(w http.ResponseWriter, r *http.Request) {
	categoryID := r.URL.Query().Get("categoryId")
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		size = 20
	}

	s.mu.Lock()
	matched := []*product{}
	for _, p := range s.products {
		if categoryID == "" || p.CategoryID == categoryID {
			matched = append(matched, p)
		}
	}
	s.mu.Unlock()

	total := len(matched)
	if len(matched) > size {
		matched = matched[:size]
	}
	writeJSON(w, http.StatusOK, page(matched, total))
}

func (s *Shop) createProduct(w http.ResponseWriter, r *http.Request, _ *user) {
	var req product
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.Name == req.Name && existing.CategoryID == req.CategoryID {
			writeError(w, http.StatusConflict, "product already exists")
			return
		}
	}
	req.ID = uuid.NewString()
	s.products = append(s.products, &req)
	writeJSON(w, http.StatusCreated, req)
}

func (s *Shop) productByID(id string) *product {
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

type cartItem struct {
	CartItemID string          `json:"cartItemId"`
	ProductID  string          `json:"productId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

type cart struct {
	CartID string      `json:"cartId"`
	UserID string      `json:"userId"`
	Items  []*cartItem `json:"items"`
}

func (s *Shop) cartRoutes(r chi.Router) {
	r.Get("/carts/{userId}", s.getCart)
	r.Post("/carts/{userId}/items", s.addCartItem)
	r.Put("/carts/{userId}/items/{itemId}", s.updateCartItem)
}

// cartFor must be called with s.mu held.
func (s *Shop) cartFor(userID string) *cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &cart{CartID: uuid.NewString(), UserID: userID, Items: []*cartItem{}}
		s.carts[userID] = c
	}
	return c
}

func (s *Shop) getCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.cartFor(chi.URLParam(r, "userId")))
}

func (s *Shop) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.productByID(req.ProductID)
	if p == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	c := s.cartFor(chi.URLParam(r, "userId"))
	c.Items = append(c.Items, &cartItem{
		CartItemID: uuid.NewString(),
		ProductID:  p.ID,
		Quantity:   req.Quantity,
		UnitPrice:  p.BasePrice,
	})
	writeJSON(w, http.StatusOK, c)
}

func (s *Shop) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(chi.URLParam(r, "userId"))
	for _, item := range c.Items {
		if item.CartItemID == chi.URLParam(r, "itemId") {
			item.Quantity = req.Quantity
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	writeError(w, http.StatusNotFound, "cart item not found")
}

type order struct {
	OrderID           string          `json:"orderId"`
	UserID            string          `json:"userId"`
	CartID            string          `json:"cartId"`
	ShippingAddressID string          `json:"shippingAddressId"`
	BillingAddressID  string          `json:"billingAddressId"`
	Status            string          `json:"status"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func (s *Shop) orderRoutes(r chi.Router) {
	r.Post("/orders", s.faulty(OpOrderCreate, s.createOrder))
	r.Get("/orders/{id}", s.getOrder)
	r.Get("/orders/user/{userId}", s.listOrders)
}

func (s *Shop) createOrder(w http.ResponseWriter, r *http.Request) {
	var req order
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[req.UserID]
	if !ok || c.CartID != req.CartID {
		writeError(w, http.StatusNotFound, "cart not found")
		return
	}
	if len(c.Items) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	req.OrderID = uuid.NewString()
	req.Status = "CONFIRMED"
	req.TotalAmount = money(total)
	req.CreatedAt = time.Now().UTC()
	s.orders = append(s.orders, &req)
	writeJSON(w, http.StatusCreated, req)
}

func (s *Shop) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderID == chi.URLParam(r, "id") {
			writeJSON(w, http.StatusOK, o)
			return
		}
	}
	writeError(w, http.StatusNotFound, "order not found")
}

func (s *Shop) listOrders(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []*order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			matched = append(matched, o)
		}
	}
	writeJSON(w, http.StatusOK, page(matched, len(matched)))
}
