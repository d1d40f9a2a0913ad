package application

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/staynest/service-booking/pkg/domain"
)

// RequestValidator checks request structs against their `validate` tags and reports failures
// as a single ValidationError.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a new RequestValidator.
func NewRequestValidator() *RequestValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Decimals are validated through their canonical string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	// Register* only fails on an empty tag, so these cannot error.
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("nonneg_money", validateNonNegativeMoney)

	return &RequestValidator{validate: v}
}

func decimalField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	if fl.Field().Kind() != reflect.String {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// validateMoney accepts a positive amount with at most two decimal places.
func validateMoney(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && d.IsPositive() && d.Equal(d.Round(2))
}

// validateNonNegativeMoney accepts zero or a positive amount with at most two decimal places.
func validateNonNegativeMoney(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && !d.IsNegative() && d.Equal(d.Round(2))
}

// Validate returns nil or a ValidationError describing every failing field.
func (v *RequestValidator) Validate(req interface{}) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domain.NewValidationError(err.Error())
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return domain.NewValidationError(strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "money":
		return fmt.Sprintf("%s must be a positive amount with at most two decimal places", fe.Field())
	case "nonneg_money":
		return fmt.Sprintf("%s must be a non-negative amount with at most two decimal places", fe.Field())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
