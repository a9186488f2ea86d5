package types

import (
	"errors"
	"fmt"
)

// The service error taxonomy. Provider failures are absorbed at the
// call site with documented defaults; everything else bubbles to the
// HTTP layer, which alone translates to status codes or stream error
// events.

// InputError is a missing or out-of-range request field. Surfaced as
// 400; never retryable.
type InputError struct {
	Field   string
	Message string
}

// NewInputError builds an InputError for one field.
func NewInputError(field, message string) *InputError {
	return &InputError{Field: field, Message: message}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Message)
}

// SimulationError is a fatal engine failure: array mismatch, non-finite
// value, or RNG failure. Surfaced as 500 or a terminal stream error.
type SimulationError struct {
	Err error
}

// NewSimulationError wraps a fatal engine failure.
func NewSimulationError(err error) *SimulationError {
	return &SimulationError{Err: err}
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation failed: %v", e.Err)
}

func (e *SimulationError) Unwrap() error { return e.Err }

// ProviderFailure records a data provider returning non-success or
// timing out. It is logged and recovered with a default, never
// propagated to the client.
type ProviderFailure struct {
	Provider string
	Err      error
}

func (e *ProviderFailure) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Err)
}

func (e *ProviderFailure) Unwrap() error { return e.Err }

// IsInputError reports whether err is an InputError anywhere in its
// chain.
func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}
