package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrProductNotFound  = errors.New("product not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ProductNotFoundError names the cart product that could not be resolved.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return "Product not found: " + e.ProductID
}

func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// ValidationError maps offending fields to a short reason.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
