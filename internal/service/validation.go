package service

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"sweetshop/internal/model"
	"sweetshop/pkg/apierror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and folds every failure into
// a single VALIDATION_ERROR whose details list the offending fields.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	msgs := make([]string, 0, len(ve))
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
		fields = append(fields, fe.Field())
	}

	return apierror.New(apierror.CodeValidation, strings.Join(msgs, "; "), strings.Join(fields, ","), http.StatusBadRequest)
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func validationError(message string, details string) *apierror.APIError {
	return apierror.New(apierror.CodeValidation, message, details, http.StatusBadRequest)
}

func validateQuantity(quantity int) error {
	return validateStruct(model.QuantityRequest{Quantity: quantity})
}

// validateRestock also caps the amount at what a single row can hold.
func validateRestock(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if quantity > model.MaxQuantity {
		return validationError(fmt.Sprintf("quantity must be at most %d", model.MaxQuantity), "quantity")
	}
	return nil
}
