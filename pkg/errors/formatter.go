package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule, keyed by the name the client submitted.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must not exceed %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	default:
		return "Invalid value"
	}
}

// fieldName prefers the form tag, then the json tag, then the Go field name.
func fieldName(structType reflect.Type, goName string) string {
	if structType == nil {
		return goName
	}
	field, found := structType.FieldByName(goName)
	if !found {
		return goName
	}

	for _, key := range []string{"form", "json"} {
		tag := field.Tag.Get(key)
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			return name
		}
	}

	return goName
}

// HasFieldError reports whether any formatted error targets field.
func HasFieldError(fieldErrors []FieldError, field string) bool {
	for _, fe := range fieldErrors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// FormatValidationErrors flattens validator errors for model. Anything else yields no field errors.
func FormatValidationErrors(err error, model any) []FieldError {
	var validationErrors validator.ValidationErrors
	if err == nil || !errors.As(err, &validationErrors) {
		return nil
	}

	var structType reflect.Type
	if model != nil {
		structType = reflect.TypeOf(model)
		if structType.Kind() == reflect.Ptr {
			structType = structType.Elem()
		}
	}

	fieldErrors := make([]FieldError, len(validationErrors))
	for i, fe := range validationErrors {
		fieldErrors[i] = FieldError{
			Field:   fieldName(structType, fe.Field()),
			Message: messageFor(fe),
		}
	}

	return fieldErrors
}
