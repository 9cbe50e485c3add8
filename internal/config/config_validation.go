package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	shopflowerrors "github.com/alexisbeaulieu97/shopflow/pkg/errors"
)

var tagMessages = map[string]string{
	"required":    "is required",
	"base_url":    "must be an http(s) URL with a host",
	"url":         "must be a URL",
	"email":       "must be an email address",
	"len":         "has the wrong length",
	"min":         "is below the minimum",
	"max":         "is above the maximum",
	"positive":    "must be positive",
	"lte_payment": "must not exceed payment_amount",
	"lte_capture": "must not exceed capture_amount",
}

// ValidateConfig performs structural and cross-field validation on an entire configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return shopflowerrors.NewValidationError("config", "configuration is nil", nil)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	return nil
}

// convertValidationError normalizes validator errors into shopflow validation errors.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := fieldPath(ve)
		msg, known := tagMessages[ve.Tag()]
		if !known {
			msg = fmt.Sprintf("failed validation for tag '%s'", ve.Tag())
		}
		return shopflowerrors.NewValidationError(field, msg, err)
	}

	return shopflowerrors.NewValidationError("config", err.Error(), err)
}

// fieldPath turns "Config.services.auth" into "services.auth".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	for i := 0; i < len(ns); i++ {
		if ns[i] == '.' {
			return ns[i+1:]
		}
	}
	return ns
}
