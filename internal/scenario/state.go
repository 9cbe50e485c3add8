// Package scenario holds the state threaded through one harness run.
package scenario

import (
	"github.com/alexisbeaulieu97/shopflow/internal/config"
)

// State is the single mutable record shared by every step of a run. An
// identifier is present when it is non-empty; steps only ever set the fields
// they own and never clear one.
type State struct {
	Services    config.Services
	Secrets     config.Secrets
	Credentials config.Credentials
	Fixtures    config.Fixtures

	PublicKeyPEM string

	AdminToken      string
	AdminUserID     string
	CustomerToken   string
	CustomerRefresh string
	CustomerUserID  string

	ShippingAddressID string
	BillingAddressID  string
	CategoryID        string
	ProductID         string
	SKU               string
	CartID            string
	CartItemID        string
	OrderID           string
	PaymentID         string
	ReservationID     string
	ShipmentID        string

	// OrderIDSynthetic is set when OrderID was generated locally rather than
	// returned by the order service.
	OrderIDSynthetic bool
}

// New creates the state for one run from cfg.
func New(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	return &State{
		Services:    cfg.Services,
		Secrets:     cfg.Secrets,
		Credentials: cfg.Credentials,
		Fixtures:    cfg.Fixtures,
	}
}

// EnsureOrderID fills OrderID from newID when no order exists yet and reports
// whether it did so. newID is only called when needed.
func (s *State) EnsureOrderID(newID func() string) bool {
	if s.OrderID != "" {
		return false
	}
	s.OrderID = newID()
	s.OrderIDSynthetic = true
	return true
}
