package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed or missing input. It is the caller's
// fault and is never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthError reports a mutating call that arrived without an authenticated
// actor. It is checked before any other validation.
type AuthError struct{}

func (e *AuthError) Error() string {
	return "no authenticated actor for mutating call"
}

// NotFoundError reports a referenced entry, lot, program or actor that does
// not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ConflictReason classifies a StateConflictError.
type ConflictReason string

const (
	ConflictAlreadyVoided ConflictReason = "ALREADY_VOIDED"
	ConflictNotVoided     ConflictReason = "NOT_VOIDED"
	ConflictSameCustodian ConflictReason = "SAME_CUSTODIAN"
)

// StateConflictError reports an operation attempted against a record in the
// wrong state: voiding a voided entry, restoring an active one, or
// transferring a lot to its current holder.
type StateConflictError struct {
	Reason ConflictReason
	ID     string
}

func (e *StateConflictError) Error() string {
	switch e.Reason {
	case ConflictAlreadyVoided:
		return fmt.Sprintf("entry %q is already voided", e.ID)
	case ConflictNotVoided:
		return fmt.Sprintf("entry %q is not voided", e.ID)
	case ConflictSameCustodian:
		return "transfer source and destination custodian are the same"
	}
	return fmt.Sprintf("state conflict on %q: %s", e.ID, e.Reason)
}

// InsufficientKind classifies an InsufficientError.
type InsufficientKind string

const (
	InsufficientStock   InsufficientKind = "STOCK"
	InsufficientHolding InsufficientKind = "HOLDING"
	BelowConsumed       InsufficientKind = "BELOW_CONSUMED"
)

// InsufficientError reports a quantity that exceeds what the lot or the
// custodian can cover. Available carries the current quantity so the caller
// can render an actionable message without a second round-trip.
type InsufficientError struct {
	Kind      InsufficientKind
	LotID     string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientError) Error() string {
	switch e.Kind {
	case InsufficientStock:
		return fmt.Sprintf("insufficient stock on lot %q: requested %s, available %s",
			e.LotID, e.Requested, e.Available)
	case InsufficientHolding:
		return fmt.Sprintf("insufficient holding on lot %q: requested %s, held %s",
			e.LotID, e.Requested, e.Available)
	case BelowConsumed:
		return fmt.Sprintf("adjusted quantity on lot %q cannot go below zero (consumed %s)",
			e.LotID, e.Available)
	}
	return fmt.Sprintf("insufficient %s on lot %q", e.Kind, e.LotID)
}

// InUseError reports a void blocked because consumptions already reference
// the entry's lot. Voiding would retroactively invalidate consumed stock.
type InUseError struct {
	LotID       string
	ConsumedQty decimal.Decimal
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("lot %q has %s units already consumed; void the consumptions' programs first or adjust",
		e.LotID, e.ConsumedQty)
}

// PersistenceError wraps an unexpected store-level failure. The engine never
// retries these; the caller decides whether to retry or alert.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
