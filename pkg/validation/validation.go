// Package validation runs struct-tag validation on request DTOs and turns the
// first failure into a validation domain error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "confessional/pkg/domain-errors"
	s "confessional/pkg/string"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields the way clients spell them
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("imagetype", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(strings.ToLower(fl.Field().String()), "image/")
	})
	return v
}

// Validate validates a struct using the default validator and returns a domain error.
// Length tags (min, max) on strings count runes.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage describes the first failed rule.
func ErrorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request body"
	}
	return describe(fieldErrs[0])
}

func fieldName(fe validator.FieldError) string {
	if name := fe.Field(); name != "" && name != fe.StructField() {
		return name
	}
	return s.ToSnakeCase(fe.StructField())
}

func describe(fe validator.FieldError) string {
	field := fieldName(fe)
	if field == "" {
		return "invalid request body"
	}

	var rule string
	switch fe.ActualTag() {
	case "required":
		rule = "is required"
	case "notblank":
		rule = "must not be blank"
	case "email":
		rule = "must be a valid email"
	case "imagetype":
		rule = "must be an image"
	case "min", "max":
		bound := "at least"
		if fe.ActualTag() == "max" {
			bound = "at most"
		}
		unit := ""
		if fe.Kind() == reflect.String {
			unit = " characters"
		}
		rule = fmt.Sprintf("must be %s %s%s", bound, fe.Param(), unit)
	case "oneof":
		rule = fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		rule = "is invalid"
	}
	return field + " " + rule
}
