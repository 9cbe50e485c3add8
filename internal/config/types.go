package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config is the complete, immutable configuration for one harness run.
type Config struct {
	Services    Services      `yaml:"services"`
	Secrets     Secrets       `yaml:"secrets"`
	Credentials Credentials   `yaml:"credentials"`
	Fixtures    Fixtures      `yaml:"fixtures"`
	HTTP        HTTPSettings  `yaml:"http"`
	Retry       RetrySettings `yaml:"retry"`
}

// Services holds the base URL of every service under test.
type Services struct {
	Auth      string `yaml:"auth" validate:"required,base_url"`
	User      string `yaml:"user" validate:"required,base_url"`
	Catalog   string `yaml:"catalog" validate:"required,base_url"`
	Cart      string `yaml:"cart" validate:"required,base_url"`
	Order     string `yaml:"order" validate:"required,base_url"`
	Payment   string `yaml:"payment" validate:"required,base_url"`
	Inventory string `yaml:"inventory" validate:"required,base_url"`
	Shipping  string `yaml:"shipping" validate:"required,base_url"`
}

// Secrets holds the shared service-to-service secrets. The per-service
// values are optional overrides of Default.
type Secrets struct {
	Default  string `yaml:"default" validate:"required"`
	Auth     string `yaml:"auth,omitempty"`
	Payment  string `yaml:"payment,omitempty"`
	Shipping string `yaml:"shipping,omitempty"`
}

// ForAuth returns the secret presented to endpoints guarded by the auth secret.
func (s Secrets) ForAuth() string {
	return fallback(s.Auth, s.Default)
}

// ForPayment returns the secret presented to the payment service.
func (s Secrets) ForPayment() string {
	return fallback(s.Payment, s.Default)
}

// ForShipping returns the secret presented to the shipping service.
func (s Secrets) ForShipping() string {
	return fallback(s.Shipping, s.Default)
}

func fallback(value, def string) string {
	if value != "" {
		return value
	}
	return def
}

// Credentials holds the fixed accounts used by the scenario.
type Credentials struct {
	Admin    Account `yaml:"admin"`
	Customer Account `yaml:"customer"`
}

// Account is an email/password pair.
type Account struct {
	Email    string `yaml:"email" validate:"required,email"`
	Password string `yaml:"password" validate:"required"`
}

// Fixtures are the fixed values sent in request payloads.
type Fixtures struct {
	ImageURL      string          `yaml:"image_url" validate:"required,url"`
	Currency      string          `yaml:"currency" validate:"required,len=3"`
	ProductPrice  decimal.Decimal `yaml:"product_price"`
	PaymentAmount decimal.Decimal `yaml:"payment_amount"`
	CaptureAmount decimal.Decimal `yaml:"capture_amount"`
	RefundAmount  decimal.Decimal `yaml:"refund_amount"`
}

// HTTPSettings configures the HTTP client adapter.
type HTTPSettings struct {
	Timeout time.Duration `yaml:"timeout" validate:"min=1ms"`
}

// RetrySettings configures the bounded retry on business declines.
type RetrySettings struct {
	Attempts int           `yaml:"attempts" validate:"min=1,max=10"`
	Delay    time.Duration `yaml:"delay" validate:"min=0"`
}
