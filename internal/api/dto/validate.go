package dto

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared request validator. Field names in errors use the
// JSON tag so messages match the request body.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FormatValidationError turns a validator failure into a short message.
func FormatValidationError(err validator.FieldError) string {
	field := strings.TrimPrefix(err.Namespace(), strings.SplitN(err.Namespace(), ".", 2)[0]+".")
	switch err.Tag() {
	case "required":
		return field + " is required"
	case "latitude":
		return field + " must be between -90 and 90"
	case "longitude":
		return field + " must be between -180 and 180"
	case "max":
		return field + " must have at most " + err.Param() + " items"
	case "oneof":
		return field + " must be one of: " + err.Param()
	default:
		return field + " failed " + err.Tag() + " validation"
	}
}
