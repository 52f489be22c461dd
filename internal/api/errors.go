package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tonghaoch/transaction-service-go/internal/transaction"
)

// Error types reported in ErrorDetail.Type.
const (
	TypeInvalidRequest  = "invalid_request_error"
	TypeRequestTooLarge = "request_too_large"
	TypeAuthentication  = "authentication_error"
	TypeRateLimit       = "rate_limit_error"
	TypeInternal        = "internal_error"
)

// ErrorResponse is the JSON error format returned to clients.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// StatusFor maps an error to the HTTP status and error type it is reported with.
func StatusFor(err error) (int, string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, transaction.ErrInvalidInput):
		return http.StatusBadRequest, TypeInvalidRequest
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, TypeRequestTooLarge
	default:
		return http.StatusInternalServerError, TypeInternal
	}
}

// WriteError writes a structured JSON error response for err.
func WriteError(w http.ResponseWriter, err error) int {
	statusCode, errType := StatusFor(err)
	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		slog.Error("request error", "status", statusCode, "error", err)
		message = "internal server error"
	} else {
		slog.Debug("request rejected", "status", statusCode, "message", message)
	}

	WriteErrorMessage(w, statusCode, errType, message)
	return statusCode
}

// WriteErrorMessage writes the error envelope with an explicit status and type.
func WriteErrorMessage(w http.ResponseWriter, statusCode int, errType, message string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errType,
		},
	})
}

// WriteJSON writes v as a JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
