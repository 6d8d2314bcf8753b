package dto

import (
	"errors"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/brushy-app/brushy_api/shared"
	"github.com/brushy-app/brushy_api/streak"
	"github.com/go-playground/validator/v10"
)

const passwordRuleMessage = "Password must contain at least 8 characters with uppercase, lowercase, number, and special character"

var validate = newValidator()

// newValidator reports fields by their JSON name and registers the
// strong_password, pin and calendar_date tags.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return streak.ValidPin(fl.Field().String())
	})
	_ = v.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(shared.DateLayout, fl.Field().String())
		return err == nil
	})

	return v
}

func GetValidator() *validator.Validate {
	return validate
}

// IsStrongPassword requires 8+ characters mixing upper and lower case
// letters, a digit and a symbol.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "gte":
		return field + " must be greater than or equal to " + fe.Param()
	case "lte":
		return field + " must be less than or equal to " + fe.Param()
	case "strong_password":
		return passwordRuleMessage
	case "pin":
		return field + " must be exactly 6 digits"
	case "calendar_date":
		return field + " must be a date formatted as YYYY-MM-DD"
	}
	return field + " is invalid"
}

// FormatValidationErrors flattens validator errors into one entry per field.
// Errors of any other kind yield nil.
func FormatValidationErrors(err error) []ValidationError {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return nil
	}

	out := make([]ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

type Validator interface {
	Validate() error
}

func CreateValidationErrorResponse(err error) ValidationErrorResponse {
	return ValidationErrorResponse{
		Code:    400,
		Message: "Validation failed",
		Errors:  FormatValidationErrors(err),
	}
}
