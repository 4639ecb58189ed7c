package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/opsdesk/helpdesk-service/pkg/util/errorutil"
)

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validate checks req, turning the first failed rule into a domain error.
func validate(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	first := fieldErrs[0]
	if first.Tag() == "required" {
		return apperrors.NewMissingField(first.Field())
	}
	return apperrors.NewValidationError("invalid field", map[string]any{
		"field": first.Field(),
		"rule":  first.Tag(),
	})
}
