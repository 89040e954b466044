// Package validate runs go-playground/validator rules and flattens the
// result into a json-field → message map.
//
// Example:
//
//	type Input struct {
//	    Name   string   `json:"name"   validate:"required,max=64"`
//	    Amount *int     `json:"amount" validate:"required"`
//	    Site   string   `json:"site"   validate:"omitempty,url"`
//	}
//
// A pointer field tagged `required` accepts any value, zero included, and
// only fails when the key was absent or null.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once   sync.Once
	engine *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(jsonFieldName)
	})
	return engine
}

// Struct validates v and returns fieldName → message; an empty map means
// v is valid. Non-struct values are reported as valid.
func Struct(v any) map[string]string {
	errs := make(map[string]string)

	err := instance().Struct(v)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errs
	}
	for _, fe := range fieldErrs {
		name := fe.Field()
		if _, seen := errs[name]; seen {
			continue
		}
		errs[name] = message(name, fe)
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func message(field string, fe validator.FieldError) string {
	param := fe.Param()
	numeric := isNumericKind(fe.Kind())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "url", "http_url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("The %s must be a valid UUID.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "min":
		if numeric {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
		return fmt.Sprintf("The %s must be at least %s characters.", field, param)
	case "max":
		if numeric {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
		return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, param)
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
	case "lt":
		return fmt.Sprintf("The %s must be less than %s.", field, param)
	case "lte":
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
	}
	return fmt.Sprintf("The %s field is invalid.", field)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return strings.ToLower(f.Name)
	}
	return name
}
