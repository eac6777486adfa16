package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kitabu/kitabu/internal/domain"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{
			name:   "validation",
			err:    domain.NewValidationError("amount", "must be non-negative"),
			code:   "VALIDATION_ERROR",
			status: http.StatusBadRequest,
		},
		{
			name:   "auth",
			err:    &domain.AuthError{},
			code:   "AUTH_ERROR",
			status: http.StatusUnauthorized,
		},
		{
			name:   "not found",
			err:    &domain.NotFoundError{Resource: "lot", ID: "x"},
			code:   "NOT_FOUND",
			status: http.StatusNotFound,
		},
		{
			name:   "state conflict",
			err:    &domain.StateConflictError{Reason: domain.ConflictAlreadyVoided, ID: "x"},
			code:   "STATE_CONFLICT",
			status: http.StatusConflict,
		},
		{
			name: "insufficient",
			err: &domain.InsufficientError{
				Kind: domain.InsufficientStock, LotID: "x",
				Requested: decimal.NewFromInt(70), Available: decimal.NewFromInt(60),
			},
			code:   "INSUFFICIENT_RESOURCE",
			status: http.StatusConflict,
		},
		{
			name:   "in use",
			err:    &domain.InUseError{LotID: "x", ConsumedQty: decimal.NewFromInt(40)},
			code:   "IN_USE",
			status: http.StatusConflict,
		},
		{
			name:   "persistence",
			err:    &domain.PersistenceError{Op: "entries.create", Err: errors.New("boom")},
			code:   "PERSISTENCE_ERROR",
			status: http.StatusInternalServerError,
		},
		{
			name:   "unknown",
			err:    errors.New("surprise"),
			code:   "INTERNAL_ERROR",
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromError(tt.err)
			if appErr.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, appErr.Code)
			}
			if appErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, appErr.Status)
			}
		})
	}
}

func TestFromError_InsufficientDetails(t *testing.T) {
	appErr := FromError(&domain.InsufficientError{
		Kind: domain.InsufficientStock, LotID: "lot-1",
		Requested: decimal.NewFromInt(70), Available: decimal.NewFromInt(60),
	})
	if appErr.Details["available"] != "60" {
		t.Errorf("expected available 60 in details, got %v", appErr.Details["available"])
	}
	if appErr.Details["requested"] != "70" {
		t.Errorf("expected requested 70 in details, got %v", appErr.Details["requested"])
	}
}

func TestFromError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("while voiding: %w", &domain.StateConflictError{
		Reason: domain.ConflictNotVoided, ID: "x",
	})
	appErr := FromError(wrapped)
	if appErr.Code != "STATE_CONFLICT" {
		t.Errorf("expected wrapped error to map by errors.As, got %s", appErr.Code)
	}
}

func TestFromError_PersistenceDoesNotLeak(t *testing.T) {
	appErr := FromError(&domain.PersistenceError{
		Op:  "entries.create",
		Err: errors.New("pq: password authentication failed for user postgres"),
	})
	if appErr.Message != "store operation failed" {
		t.Errorf("expected store details hidden, got %q", appErr.Message)
	}
}
