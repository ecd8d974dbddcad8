// Package utils holds small helpers shared by the transport and application layers.
package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/errors"
)

// MaxTenantIDLength matches the width of the tenant id column in the SQL store.
const MaxTenantIDLength = 128

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Validator holds the singleton instance of the validator.
var defaultValidator *validator.Validate

func init() {
	defaultValidator = validator.New()
	// Report config structs by their mapstructure keys, e.g. server.port.
	defaultValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Register custom validation functions
	_ = defaultValidator.RegisterValidation("tenant_id", validateTenantID)
}

func validateTenantID(fl validator.FieldLevel) bool {
	return tenantIDPattern.MatchString(fl.Field().String())
}

// ValidateTenantID checks that id can be used as a storage key and as a path segment.
// It returns an invalid_request AppError if validation fails.
func ValidateTenantID(id string) errors.AppError {
	if constants.IsReservedTenantID(id) {
		return errors.ErrInvalidRequest(fmt.Sprintf("tenant id %q is reserved", id)).WithMetadata("tenant_id", id)
	}
	rule := fmt.Sprintf("required,max=%d,tenant_id", MaxTenantIDLength)
	if err := defaultValidator.Var(id, rule); err != nil {
		msg := "tenant id is invalid"
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			msg = "tenant id " + formatValidationError(fieldErrs[0])
		}
		return errors.ErrInvalidRequest(msg).WithMetadata("tenant_id", id)
	}
	return nil
}

// ValidateStruct validates a struct using the default validator, nested structs included.
// It returns an invalid_request AppError whose "fields" metadata maps each failed field
// path, e.g. "store.backend" or "tenant_id", to a message.
func ValidateStruct(s interface{}) errors.AppError {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrInvalidRequest(err.Error())
	}

	details := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		details[fieldPath(fe)] = formatValidationError(fe)
	}
	return errors.ErrInvalidRequest("request validation failed").WithMetadata("fields", details)
}

// formatValidationError creates a user-friendly error message for a validation error.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "tenant_id":
		return "must start with a letter or digit and contain only letters, digits, '_', '-' or '.'"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
	}
}

// fieldPath drops the top-level struct name from the error namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return toSnakeCase(ns)
}

// toSnakeCase converts a string from CamelCase to snake_case.
// This is used to format field names in the validation error response.
func toSnakeCase(str string) string {
	var matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	var matchAllCap = regexp.MustCompile("([a-z0-9])([A-Z])")
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}
