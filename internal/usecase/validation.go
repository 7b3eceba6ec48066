package usecase

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NormalizeRegisterInput trims the identifying fields. Phone, dates and timeline stay as typed.
func NormalizeRegisterInput(input RegisterInput) RegisterInput {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.Timestamp = FreeText(strings.TrimSpace(string(input.Timestamp)))
	return input
}

func ValidateRegisterInput(input RegisterInput) []ValidationError {
	err := validate.Struct(NormalizeRegisterInput(input))
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{"body", err.Error()}}
	}

	var errs []ValidationError
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{fe.Field(), describe(fe)})
	}
	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	}
	return "is invalid"
}

func joinValidationErrors(errs []ValidationError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
