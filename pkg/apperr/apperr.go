package apperr

import (
	"errors"
	"net/http"

	"github.com/kitabu/kitabu/internal/domain"
)

// AppError is the wire-level shape of an engine error: a stable code, a
// human message and the HTTP status it maps to. Details carry the numbers
// the caller needs to render an actionable message (field name, current
// available quantity, current holding).
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

// FromError maps a domain error to its AppError. Unrecognized errors map to
// INTERNAL_ERROR so store-level details never leak to callers.
func FromError(err error) *AppError {
	var (
		validationErr   *domain.ValidationError
		authErr         *domain.AuthError
		notFoundErr     *domain.NotFoundError
		conflictErr     *domain.StateConflictError
		insufficientErr *domain.InsufficientError
		inUseErr        *domain.InUseError
		persistenceErr  *domain.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		return &AppError{
			Code:    "VALIDATION_ERROR",
			Message: validationErr.Error(),
			Status:  http.StatusBadRequest,
			Details: map[string]interface{}{"field": validationErr.Field},
		}
	case errors.As(err, &authErr):
		return &AppError{
			Code:    "AUTH_ERROR",
			Message: authErr.Error(),
			Status:  http.StatusUnauthorized,
		}
	case errors.As(err, &notFoundErr):
		return &AppError{
			Code:    "NOT_FOUND",
			Message: notFoundErr.Error(),
			Status:  http.StatusNotFound,
			Details: map[string]interface{}{
				"resource": notFoundErr.Resource,
				"id":       notFoundErr.ID,
			},
		}
	case errors.As(err, &conflictErr):
		return &AppError{
			Code:    "STATE_CONFLICT",
			Message: conflictErr.Error(),
			Status:  http.StatusConflict,
			Details: map[string]interface{}{"reason": string(conflictErr.Reason)},
		}
	case errors.As(err, &insufficientErr):
		return &AppError{
			Code:    "INSUFFICIENT_RESOURCE",
			Message: insufficientErr.Error(),
			Status:  http.StatusConflict,
			Details: map[string]interface{}{
				"kind":      string(insufficientErr.Kind),
				"lot_id":    insufficientErr.LotID,
				"requested": insufficientErr.Requested.String(),
				"available": insufficientErr.Available.String(),
			},
		}
	case errors.As(err, &inUseErr):
		return &AppError{
			Code:    "IN_USE",
			Message: inUseErr.Error(),
			Status:  http.StatusConflict,
			Details: map[string]interface{}{
				"lot_id":       inUseErr.LotID,
				"consumed_qty": inUseErr.ConsumedQty.String(),
			},
		}
	case errors.As(err, &persistenceErr):
		return &AppError{
			Code:    "PERSISTENCE_ERROR",
			Message: "store operation failed",
			Status:  http.StatusInternalServerError,
		}
	default:
		return &AppError{
			Code:    "INTERNAL_ERROR",
			Message: "an unexpected error occurred",
			Status:  http.StatusInternalServerError,
		}
	}
}
