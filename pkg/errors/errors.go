package errors

import (
	"errors"
	"fmt"
)

// ErrValidation is a client-local validation failure. Nothing is sent to the
// upstream API when one of these is returned.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrRejected is a rejection from the upstream API carrying the
// server-supplied message. Inventory marks the distinguished
// inventory-shortage case so callers can clamp quantities and show
// stock-specific messaging.
type ErrRejected struct {
	Message   string
	Inventory bool
}

func (e *ErrRejected) Error() string {
	return e.Message
}

// ErrNetwork wraps a transport-level failure (connection refused, timeout).
// These are retryable; the upstream state is unknown.
type ErrNetwork struct {
	Op  string
	Err error
}

func (e *ErrNetwork) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// ErrInvalidStateTransition reports an attempt to move the checkout flow to a
// step its current step does not allow.
type ErrInvalidStateTransition struct {
	From string
	To   string
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// IsValidation reports whether err is a client-local validation error.
func IsValidation(err error) bool {
	var ve *ErrValidation
	return errors.As(err, &ve)
}

// IsRejected reports whether err is an upstream rejection.
func IsRejected(err error) bool {
	var re *ErrRejected
	return errors.As(err, &re)
}

// IsInventory reports whether err is the inventory-shortage rejection.
func IsInventory(err error) bool {
	var re *ErrRejected
	return errors.As(err, &re) && re.Inventory
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ne *ErrNetwork
	return errors.As(err, &ne)
}
