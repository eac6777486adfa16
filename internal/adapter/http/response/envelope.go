package response

import (
	"encoding/json"
	"net/http"

	"github.com/kitabu/kitabu/pkg/apperr"
)

// Envelope is the uniform response shape of the API.
type Envelope struct {
	Status  bool             `json:"status"`
	Message string           `json:"message"`
	Data    interface{}      `json:"data,omitempty"`
	Error   *apperr.AppError `json:"error,omitempty"`
}

// WriteJSON writes an envelope with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, status bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Envelope{Status: status, Message: message, Data: data})
}

// Success writes a successful envelope.
func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, true, message, data)
}

// Error maps a domain error to its AppError and writes it.
func Error(w http.ResponseWriter, err error) {
	appErr := apperr.FromError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.Status)
	json.NewEncoder(w).Encode(Envelope{Status: false, Message: appErr.Message, Error: appErr})
}

// BadRequest writes a plain bad-request envelope for malformed payloads.
func BadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, false, message, nil)
}

// Unauthorized writes a plain unauthorized envelope.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusUnauthorized, false, message, nil)
}

// TooManyRequests writes a rate-limit envelope.
func TooManyRequests(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusTooManyRequests, false, message, nil)
}
