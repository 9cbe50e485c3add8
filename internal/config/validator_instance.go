package config

import (
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("base_url", func(fl validator.FieldLevel) bool {
			raw := strings.TrimSpace(fl.Field().String())
			if raw == "" {
				return false
			}
			parsed, err := url.Parse(raw)
			if err != nil {
				return false
			}
			scheme := strings.ToLower(parsed.Scheme)
			return (scheme == "http" || scheme == "https") && parsed.Host != ""
		})

		v.RegisterStructValidation(validateFixtures, Fixtures{})

		validateInst = v
	})

	return validateInst
}

// validateFixtures enforces the monetary rules that field tags cannot express.
func validateFixtures(sl validator.StructLevel) {
	fixtures := sl.Current().Interface().(Fixtures)

	amounts := []struct {
		name  string
		field string
		value any
		ok    bool
	}{
		{"product_price", "ProductPrice", fixtures.ProductPrice, fixtures.ProductPrice.IsPositive()},
		{"payment_amount", "PaymentAmount", fixtures.PaymentAmount, fixtures.PaymentAmount.IsPositive()},
		{"capture_amount", "CaptureAmount", fixtures.CaptureAmount, fixtures.CaptureAmount.IsPositive()},
		{"refund_amount", "RefundAmount", fixtures.RefundAmount, fixtures.RefundAmount.IsPositive()},
	}
	for _, amount := range amounts {
		if !amount.ok {
			sl.ReportError(amount.value, amount.name, amount.field, "positive", "")
		}
	}

	if fixtures.CaptureAmount.GreaterThan(fixtures.PaymentAmount) {
		sl.ReportError(fixtures.CaptureAmount, "capture_amount", "CaptureAmount", "lte_payment", "")
	}
	if fixtures.RefundAmount.GreaterThan(fixtures.CaptureAmount) {
		sl.ReportError(fixtures.RefundAmount, "refund_amount", "RefundAmount", "lte_capture", "")
	}
}
