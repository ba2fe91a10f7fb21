package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports a scope declaration that cannot be compiled:
// an unresolvable association, a relation that cannot be joined, or an
// option value the compiler cannot honor.
//
// These are deterministic mistakes in the declaration. They surface when the
// scope is prepared, never while rows are fetched.
type ConfigurationError struct {
	// Scope is the scope name, when known.
	Scope string

	// Association is the offending association name, when one is involved.
	Association string

	// Option is the offending declaration key (e.g. "associated_against").
	Option string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	var parts []string
	if e.Scope != "" {
		parts = append(parts, fmt.Sprintf("scope %q", e.Scope))
	}
	if e.Option != "" {
		parts = append(parts, e.Option)
	}
	if e.Association != "" {
		parts = append(parts, fmt.Sprintf("association %q", e.Association))
	}
	if len(parts) == 0 {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error: %s: %s", strings.Join(parts, ": "), e.Message)
}

// ArgumentError reports an invalid argument to a compile call: a blank query,
// or an option the query layer cannot honor.
type ArgumentError struct {
	// Option names the argument or option at fault (e.g. "query", "joins").
	Option string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument error: %s: %s", e.Option, e.Message)
}

// IsConfigurationError returns true if err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsArgumentError returns true if err is or wraps an ArgumentError.
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}

// NewUnknownAssociationError creates a ConfigurationError for an association
// name the catalog cannot resolve.
func NewUnknownAssociationError(association, detail string) *ConfigurationError {
	return &ConfigurationError{
		Option:      "associated_against",
		Association: association,
		Message:     detail,
	}
}

// NewBlankQueryError creates the ArgumentError returned for empty queries.
func NewBlankQueryError() *ArgumentError {
	return &ArgumentError{
		Option:  "query",
		Message: "search query must not be blank",
	}
}
