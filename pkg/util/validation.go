package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report JSON field names so messages match the request payload.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateStruct validates s and returns a VALIDATION_FAILED DomainError describing every
// failing field. Missing required fields are reported together.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return NewInternalError(err)
	}
	if len(validationErrors) == 0 {
		return nil
	}

	var missing []string
	var messages []string
	fields := make(map[string]any, len(validationErrors))
	for _, fe := range validationErrors {
		msg := fieldErrorMessage(fe)
		fields[fe.Field()] = msg
		if fe.Tag() == "required" || fe.Tag() == "required_if" {
			missing = append(missing, fe.Field())
			continue
		}
		messages = append(messages, msg)
	}

	details := map[string]any{"fields": fields}
	if len(missing) > 0 {
		details["missing"] = missing
		msg := "Missing required fields: " + strings.Join(missing, ", ")
		if len(messages) > 0 {
			msg += "; " + strings.Join(messages, "; ")
		}
		return NewValidationError(msg, details)
	}
	return NewValidationError(strings.Join(messages, "; "), details)
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
