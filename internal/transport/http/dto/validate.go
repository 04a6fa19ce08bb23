package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jiayou/auth-service/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so error meta matches what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs struct tag validation and converts the first failure into a
// domain validation error.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ErrInvalidField("body", err.Error())
	}
	return fieldError(verrs[0])
}

func fieldError(fe validator.FieldError) error {
	field := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(field)
	case "email":
		return domain.ErrInvalidField(field, "invalid format")
	case "oneof":
		if field == "role" {
			return domain.ErrInvalidRole(asString(fe.Value()))
		}
		return domain.ErrInvalidField(field, "must be one of: "+fe.Param())
	case "min", "gte":
		return domain.ErrInvalidField(field, "must be at least "+fe.Param())
	case "max", "lte":
		return domain.ErrInvalidField(field, "must be at most "+fe.Param())
	default:
		return domain.ErrInvalidField(field, "failed "+fe.Tag())
	}
}

// fieldPath drops the struct name from a namespace like
// "CaregiverProfileRequest.rates.hourly".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}
