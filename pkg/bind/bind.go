// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/inventory/config"
	"github.com/shashiranjanraj/inventory/pkg/validate"
)

// Validator is implemented by inputs with rules that struct tags cannot
// express. It runs after tag validation and its messages are merged in.
type Validator interface {
	Validate() map[string]string
}

// JSON decodes r.Body as JSON into dest and runs validation.
// The body is capped at MAX_BODY_BYTES (default 4 MB).
// Returns (errs, nil) when there are validation failures, including values
// of the wrong JSON type. Returns (nil, err) when the body is malformed or
// too large.
func JSON(r *http.Request, dest any) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())

	if err = json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return map[string]string{
				typeErr.Field: fmt.Sprintf("The %s field must be of type %s.", typeErr.Field, jsonType(typeErr.Type.String())),
			}, nil
		case errors.Is(err, io.EOF):
			return nil, errors.New("request body is empty")
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	errs = validate.Struct(dest)
	if v, ok := dest.(Validator); ok {
		for field, msg := range v.Validate() {
			if _, exists := errs[field]; !exists {
				errs[field] = msg
			}
		}
	}
	if validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

func jsonType(goType string) string {
	switch goType {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return "integer"
	case "float32", "float64":
		return "number"
	case "bool":
		return "boolean"
	case "string":
		return "string"
	}
	return goType
}
