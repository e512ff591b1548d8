package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArea indicates an area name outside the configured catalog.
	ErrInvalidArea = errors.New("invalid area")
	// ErrRouteNotFound indicates an unknown endpoint or disconnected endpoints.
	ErrRouteNotFound = errors.New("route not found")
	// ErrSchemaValidation indicates a graph record violating the required-field contract.
	ErrSchemaValidation = errors.New("schema validation failed")
)

// SchemaValidationError describes which field of which record was rejected.
type SchemaValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("%s: %s.%s %s", ErrSchemaValidation, e.Entity, e.Field, e.Reason)
}

func (e *SchemaValidationError) Unwrap() error {
	return ErrSchemaValidation
}
