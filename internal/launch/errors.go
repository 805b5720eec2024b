package launch

import (
	"errors"
	"fmt"

	"adbuilder/internal/interfaces"
)

var ErrStepTimeout = errors.New("step timed out")

// ValidationError is a pre-flight failure. Nothing has been written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IdentityError means the tenant could not be resolved. Nothing has been
// written, so the launch can be retried as is.
type IdentityError struct {
	Err error
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("could not resolve your organization: %v", e.Err)
}

func (e *IdentityError) Unwrap() error { return e.Err }

// StoreError is a failed create. Records written before it are kept.
type StoreError struct {
	Entity interfaces.Entity
	Label  string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("could not save %s %s: %v", entityLabel(e.Entity), e.Label, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func entityLabel(e interfaces.Entity) string {
	switch e {
	case interfaces.EntityAdSet:
		return "ad set"
	case interfaces.EntityAdVariant:
		return "ad variant"
	default:
		return string(e)
	}
}
