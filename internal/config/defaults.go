package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Default values used when neither the config file nor the environment
// provides one.
const (
	DefaultServiceSecret    = "dev-secret-change-in-production"
	DefaultAdminEmail       = "admin@example.com"
	DefaultAdminPassword    = "Admin123!"
	DefaultCustomerEmail    = "e2e.customer@example.com"
	DefaultCustomerPassword = "Password123!"
	DefaultImageURL         = "https://via.placeholder.com/400x400"

	DefaultHTTPTimeout   = 10 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second
)

// Default returns the configuration for a locally running stack.
func Default() *Config {
	return &Config{
		Services: Services{
			Auth:      "http://localhost:8080",
			User:      "http://localhost:8081",
			Catalog:   "http://localhost:8082",
			Cart:      "http://localhost:8083",
			Order:     "http://localhost:8086",
			Payment:   "http://localhost:8087",
			Inventory: "http://localhost:8088",
			Shipping:  "http://localhost:8089",
		},
		Secrets: Secrets{Default: DefaultServiceSecret},
		Credentials: Credentials{
			Admin:    Account{Email: DefaultAdminEmail, Password: DefaultAdminPassword},
			Customer: Account{Email: DefaultCustomerEmail, Password: DefaultCustomerPassword},
		},
		Fixtures: Fixtures{
			ImageURL:      DefaultImageURL,
			Currency:      "USD",
			ProductPrice:  decimal.RequireFromString("499.99"),
			PaymentAmount: decimal.RequireFromString("49.99"),
			CaptureAmount: decimal.RequireFromString("49.99"),
			RefundAmount:  decimal.RequireFromString("10.00"),
		},
		HTTP:  HTTPSettings{Timeout: DefaultHTTPTimeout},
		Retry: RetrySettings{Attempts: DefaultRetryAttempts, Delay: DefaultRetryDelay},
	}
}
