package config

import (
	"fmt"
	"strconv"
	"time"

	shopflowerrors "github.com/alexisbeaulieu97/shopflow/pkg/errors"
)

// Environment variable names recognised by the harness.
const (
	EnvAuthBaseURL      = "AUTH_BASE_URL"
	EnvUserBaseURL      = "USER_BASE_URL"
	EnvCatalogBaseURL   = "CATALOG_BASE_URL"
	EnvCartBaseURL      = "CART_BASE_URL"
	EnvOrderBaseURL     = "ORDER_BASE_URL"
	EnvPaymentBaseURL   = "PAYMENT_BASE_URL"
	EnvInventoryBaseURL = "INVENTORY_BASE_URL"
	EnvShippingBaseURL  = "SHIPPING_BASE_URL"

	EnvServiceSecret         = "SERVICE_SECRET"
	EnvAuthServiceSecret     = "AUTH_SERVICE_SECRET"
	EnvPaymentServiceSecret  = "PAYMENT_SERVICE_SECRET"
	EnvShippingServiceSecret = "SHIPPING_SERVICE_SECRET"

	EnvAdminEmail       = "ADMIN_EMAIL"
	EnvAdminPassword    = "ADMIN_PASSWORD"
	EnvCustomerEmail    = "CUSTOMER_EMAIL"
	EnvCustomerPassword = "CUSTOMER_PASSWORD"
	EnvCatalogImageURL  = "CATALOG_IMAGE_URL"

	EnvHTTPTimeout   = "E2E_HTTP_TIMEOUT"
	EnvRetryAttempts = "E2E_RETRY_ATTEMPTS"
	EnvRetryDelay    = "E2E_RETRY_DELAY"
)

// LookupFunc resolves a variable name. It matches os.LookupEnv.
type LookupFunc func(name string) (string, bool)

// ApplyEnv overlays environment values onto cfg. Empty values are treated as
// unset so that an exported-but-blank variable never erases a default.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}

	overrides := []struct {
		name   string
		target *string
	}{
		{EnvAuthBaseURL, &cfg.Services.Auth},
		{EnvUserBaseURL, &cfg.Services.User},
		{EnvCatalogBaseURL, &cfg.Services.Catalog},
		{EnvCartBaseURL, &cfg.Services.Cart},
		{EnvOrderBaseURL, &cfg.Services.Order},
		{EnvPaymentBaseURL, &cfg.Services.Payment},
		{EnvInventoryBaseURL, &cfg.Services.Inventory},
		{EnvShippingBaseURL, &cfg.Services.Shipping},
		{EnvServiceSecret, &cfg.Secrets.Default},
		{EnvAuthServiceSecret, &cfg.Secrets.Auth},
		{EnvPaymentServiceSecret, &cfg.Secrets.Payment},
		{EnvShippingServiceSecret, &cfg.Secrets.Shipping},
		{EnvAdminEmail, &cfg.Credentials.Admin.Email},
		{EnvAdminPassword, &cfg.Credentials.Admin.Password},
		{EnvCustomerEmail, &cfg.Credentials.Customer.Email},
		{EnvCustomerPassword, &cfg.Credentials.Customer.Password},
		{EnvCatalogImageURL, &cfg.Fixtures.ImageURL},
	}
	for _, entry := range overrides {
		if value, ok := lookup(entry.name); ok && value != "" {
			*entry.target = value
		}
	}

	if value, ok := lookup(EnvHTTPTimeout); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return shopflowerrors.NewValidationError(EnvHTTPTimeout, fmt.Sprintf("invalid duration %q", value), err)
		}
		cfg.HTTP.Timeout = d
	}
	if value, ok := lookup(EnvRetryAttempts); ok && value != "" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return shopflowerrors.NewValidationError(EnvRetryAttempts, fmt.Sprintf("invalid integer %q", value), err)
		}
		cfg.Retry.Attempts = n
	}
	if value, ok := lookup(EnvRetryDelay); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return shopflowerrors.NewValidationError(EnvRetryDelay, fmt.Sprintf("invalid duration %q", value), err)
		}
		cfg.Retry.Delay = d
	}

	return nil
}

// chainLookup consults each lookup in order and returns the first non-empty hit.
func chainLookup(lookups ...LookupFunc) LookupFunc {
	return func(name string) (string, bool) {
		for _, lookup := range lookups {
			if lookup == nil {
				continue
			}
			if value, ok := lookup(name); ok && value != "" {
				return value, true
			}
		}
		return "", false
	}
}

// mapLookup adapts a plain map, such as a parsed dotenv file, to LookupFunc.
func mapLookup(values map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	}
}
