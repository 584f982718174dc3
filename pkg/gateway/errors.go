package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports every problem found with a call's arguments.
type ValidationError struct {
	Operation string

	// Reason is set when the arguments could not be inspected at all
	Reason string

	Missing    []string
	Mismatched []TypeMismatch
}

// TypeMismatch is a present field whose value has the wrong type.
type TypeMismatch struct {
	Field    string
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid arguments for %s: %s", e.Operation, e.Reason)
	}

	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		fields := make([]string, len(e.Mismatched))
		for i, m := range e.Mismatched {
			fields[i] = fmt.Sprintf("%s (expected %s, got %s)", m.Field, m.Expected, m.Actual)
		}
		parts = append(parts, "invalid field types: "+strings.Join(fields, ", "))
	}

	return fmt.Sprintf("invalid arguments for %s: %s", e.Operation, strings.Join(parts, "; "))
}

// InvalidIdentifierError is returned when an identifier argument is not a
// non-empty ASCII alphanumeric string.
type InvalidIdentifierError struct {
	Param string
	Value string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid %s %q: identifiers must be non-empty and contain only ASCII letters and digits", e.Param, e.Value)
}

// UnknownOperationError is returned for names missing from the registry.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation: %s", e.Name)
}

// RemoteError is a non-2xx response from the remote service.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote service returned status %d: %s", e.StatusCode, e.Body)
}

const (
	OutcomeSuccess           = "success"
	OutcomeValidationError   = "validation_error"
	OutcomeInvalidIdentifier = "invalid_identifier"
	OutcomeUnknownOperation  = "unknown_operation"
	OutcomeRemoteError       = "remote_error"
	OutcomeTransportError    = "transport_error"
)

// Outcome classifies the result of a Call for logs and metrics.
func Outcome(err error) string {
	var (
		validationErr *ValidationError
		identifierErr *InvalidIdentifierError
		unknownErr    *UnknownOperationError
		remoteErr     *RemoteError
	)

	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &validationErr):
		return OutcomeValidationError
	case errors.As(err, &identifierErr):
		return OutcomeInvalidIdentifier
	case errors.As(err, &unknownErr):
		return OutcomeUnknownOperation
	case errors.As(err, &remoteErr):
		return OutcomeRemoteError
	default:
		return OutcomeTransportError
	}
}
