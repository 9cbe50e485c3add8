package fakeshop

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stockItem struct {
	SKU               string `json:"sku"`
	ProductID         string `json:"productId"`
	AvailableQty      int    `json:"availableQty"`
	ReservedQty       int    `json:"reservedQty"`
	LowStockThreshold int    `json:"lowStockThreshold"`
}

type reservationLine struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type reservation struct {
	ReservationID string            `json:"reservationId"`
	OrderID       string            `json:"orderId"`
	Status        string            `json:"status"`
	Lines         []reservationLine `json:"lines"`
	ExpiresAt     time.Time         `json:"expiresAt"`
}

func (s *Shop) inventoryRoutes(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Post("/admin/stock-items", s.faulty(OpStockCreate, s.createStockItem))
		r.Put("/admin/stock-items/{sku}", s.faulty(OpStockAdjust, s.adjustStockItem))
		r.Get("/admin/stock-items/{sku}", s.getStockItem)
		r.Get("/public/stock/{sku}", s.publicStock)
		r.Post("/reservations", s.createReservation)
		r.Get("/reservations/{id}", s.getReservation)
		r.Put("/reservations/{id}/confirm", s.confirmReservation)
	})
}

func (s *Shop) createStockItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU               string `json:"sku"`
		ProductID         string `json:"productId"`
		InitialQty        int    `json:"initialQty"`
		LowStockThreshold int    `json:"lowStockThreshold"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.stock[req.SKU]; exists {
		writeError(w, http.StatusConflict, "stock item already exists")
		return
	}
	item := &stockItem{
		SKU:               req.SKU,
		ProductID:         req.ProductID,
		AvailableQty:      req.InitialQty,
		LowStockThreshold: req.LowStockThreshold,
	}
	s.stock[req.SKU] = item
	writeJSON(w, http.StatusCreated, item)
}

func (s *Shop) adjustStockItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AvailableQtyDelta int    `json:"availableQtyDelta"`
		Reason            string `json:"reason"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.stock[chi.URLParam(r, "sku")]
	if !ok {
		writeError(w, http.StatusNotFound, "stock item not found")
		return
	}
	item.AvailableQty += req.AvailableQtyDelta
	writeJSON(w, http.StatusOK, item)
}

func (s *Shop) getStockItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.stock[chi.URLParam(r, "sku")]
	if !ok {
		writeError(w, http.StatusNotFound, "stock item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Shop) publicStock(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.stock[chi.URLParam(r, "sku")]
	if !ok {
		writeError(w, http.StatusNotFound, "stock item not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sku":          item.SKU,
		"availableQty": item.AvailableQty,
		"inStock":      item.AvailableQty > 0,
	})
}

func (s *Shop) createReservation(w http.ResponseWriter, r *http.Request) {
	var req reservation
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range req.Lines {
		item, ok := s.stock[line.SKU]
		if !ok {
			writeError(w, http.StatusNotFound, "stock item not found: "+line.SKU)
			return
		}
		if item.AvailableQty < line.Quantity {
			writeError(w, http.StatusConflict, "insufficient stock: "+line.SKU)
			return
		}
	}
	for _, line := range req.Lines {
		item := s.stock[line.SKU]
		item.AvailableQty -= line.Quantity
		item.ReservedQty += line.Quantity
	}

	req.ReservationID = uuid.NewString()
	req.Status = "PENDING"
	req.ExpiresAt = time.Now().UTC().Add(15 * time.Minute)
	s.reservations[req.ReservationID] = &req
	writeJSON(w, http.StatusCreated, req)
}

func (s *Shop) getReservation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "reservation not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Shop) confirmReservation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "reservation not found")
		return
	}
	if res.Status != "PENDING" {
		writeError(w, http.StatusConflict, "reservation is "+res.Status)
		return
	}
	for _, line := range res.Lines {
		s.stock[line.SKU].ReservedQty -= line.Quantity
	}
	res.Status = "CONFIRMED"
	writeJSON(w, http.StatusOK, res)
}

type trackingEvent struct {
	ID          int       `json:"id"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	EventTime   time.Time `json:"eventTime"`
}

type shipment struct {
	ShipmentID        string          `json:"shipmentId"`
	OrderID           string          `json:"orderId"`
	UserID            string          `json:"userId"`
	Status            string          `json:"status"`
	TrackingNumber    string          `json:"trackingNumber"`
	Carrier           string          `json:"carrier"`
	ItemCount         int             `json:"itemCount"`
	PackageWeightKg   decimal.Decimal `json:"packageWeightKg"`
	PackageDimensions string          `json:"packageDimensions"`
	ShippingAddress   map[string]any  `json:"shippingAddress"`

	tracking []trackingEvent
}

func (sh *shipment) track(status, description string) {
	sh.Status = status
	sh.tracking = append(sh.tracking, trackingEvent{
		ID:          len(sh.tracking) + 1,
		Status:      status,
		Location:    "Distribution Center",
		Description: description,
		EventTime:   time.Now().UTC(),
	})
}

func (s *Shop) shippingRoutes(r chi.Router) {
	r.Post("/shipments", s.faulty(OpShipmentCreate, s.requireSecret(s.createShipment)))
	r.Get("/shipments/order/{orderId}", s.requireSecret(s.shipmentByOrder))
	r.Get("/shipments/user/me", s.authenticated(s.myShipments))
	r.Get("/shipments/{id}", s.authenticated(s.getShipment))
	r.Get("/shipments/{id}/tracking", s.authenticated(s.shipmentTracking))
	r.Patch("/shipments/{id}/status", s.faulty(OpShipmentUpdate, s.adminOnly(s.updateShipmentStatus)))
}

func (s *Shop) createShipment(w http.ResponseWriter, r *http.Request) {
	var req shipment
	if !decode(w, r, &req) {
		return
	}
	if req.ShippingAddress == nil {
		writeError(w, http.StatusBadRequest, "shippingAddress is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.shipments {
		if existing.OrderID == req.OrderID {
			writeError(w, http.StatusConflict, "shipment already exists for order")
			return
		}
	}
	req.ShipmentID = uuid.NewString()
	req.Carrier = "FAKE"
	req.TrackingNumber = "TRK" + req.ShipmentID[:8]
	req.track("PENDING", "Shipment created")
	s.shipments = append(s.shipments, &req)
	writeJSON(w, http.StatusCreated, &req)
}

func (s *Shop) shipmentByOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range s.shipments {
		if sh.OrderID == chi.URLParam(r, "orderId") {
			writeJSON(w, http.StatusOK, sh)
			return
		}
	}
	writeError(w, http.StatusNotFound, "shipment not found")
}

// visibleShipment must be called with s.mu held.
func (s *Shop) visibleShipment(w http.ResponseWriter, r *http.Request, u *user) *shipment {
	for _, sh := range s.shipments {
		if sh.ShipmentID != chi.URLParam(r, "id") {
			continue
		}
		if !u.Admin && sh.UserID != u.ID {
			writeError(w, http.StatusForbidden, "access denied")
			return nil
		}
		return sh
	}
	writeError(w, http.StatusNotFound, "shipment not found")
	return nil
}

func (s *Shop) getShipment(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh := s.visibleShipment(w, r, u); sh != nil {
		writeJSON(w, http.StatusOK, sh)
	}
}

func (s *Shop) shipmentTracking(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh := s.visibleShipment(w, r, u); sh != nil {
		writeJSON(w, http.StatusOK, append([]trackingEvent{}, sh.tracking...))
	}
}

func (s *Shop) myShipments(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mine := []*shipment{}
	for _, sh := range s.shipments {
		if sh.UserID == u.ID {
			mine = append(mine, sh)
		}
	}
	writeJSON(w, http.StatusOK, mine)
}

func (s *Shop) updateShipmentStatus(w http.ResponseWriter, r *http.Request, u *user) {
	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sh := s.visibleShipment(w, r, u); sh != nil {
		sh.track(req.Status, req.Reason)
		writeJSON(w, http.StatusOK, sh)
	}
}
