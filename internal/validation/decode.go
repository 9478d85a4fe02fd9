package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/joao-fontenele/storefront/internal/domain"
)

// ErrMalformedBody reports a request body that is not well-formed JSON.
var ErrMalformedBody = errors.New("malformed request body")

// Decode reads one JSON document from r into v. Syntactically broken input
// yields ErrMalformedBody. A value of the wrong type, such as a string
// quantity or a non-numeric price, yields a *domain.ValidationError.
func Decode(r io.Reader, v any) error {
	err := json.NewDecoder(r).Decode(v)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var invalidErr *json.InvalidUnmarshalError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return domain.NewValidationError(field, "is invalid")
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	case errors.As(err, &invalidErr):
		return err
	default:
		// Custom unmarshalers (decimal prices) reject the value without naming the field.
		return domain.NewValidationError("body", "contains an invalid value")
	}
}
