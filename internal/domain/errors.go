package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by queries that reference an unknown endpoint name.
var ErrNotFound = errors.New("endpoint not found")

// ValidationError rejects a single EndpointSpec at load time. Other valid
// specs in the same batch still load.
type ValidationError struct {
	Name  string // spec name, may be empty if the name itself is missing
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("endpoint spec: %s %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("endpoint %q: %s %s", e.Name, e.Field, e.Msg)
}

// Validate checks the invariants every spec must hold before registration.
func (s EndpointSpec) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Msg: "must be non-empty"}
	}
	if s.URL == "" {
		return &ValidationError{Name: s.Name, Field: "url", Msg: "must be non-empty"}
	}
	if s.Interval <= 0 {
		return &ValidationError{Name: s.Name, Field: "interval", Msg: "must be positive"}
	}
	if s.Timeout <= 0 {
		return &ValidationError{Name: s.Name, Field: "timeout", Msg: "must be positive"}
	}
	return nil
}
