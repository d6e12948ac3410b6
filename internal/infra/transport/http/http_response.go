package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkrupp/homecase-accounts/internal/domain"
)

// Error codes reported in the message field of ErrorResponse.
const (
	CodeSomethingWentWrong = "SOME_THING_WENT_WRONG"
	CodeUnauthenticated    = "UNAUTHENTICATED"
)

// ErrorResponse is the JSON body of every non-2xx response.
// Message and Errors are mutually exclusive; Key names the offending field.
type ErrorResponse struct {
	Code    int                          `json:"code"`
	Message string                       `json:"message,omitempty"`
	Errors  map[string]domain.FieldError `json:"errors,omitempty"`
	Key     string                       `json:"key,omitempty"`
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// WriteError writes an ErrorResponse carrying message and, if not empty, key.
func WriteError(w http.ResponseWriter, status int, message, key string) error {
	//nolint:exhaustruct
	return WriteJSON(w, status, ErrorResponse{
		Code:    status,
		Message: message,
		Key:     key,
	})
}

// WriteValidationError writes a 400 response with field-mapped errors.
func WriteValidationError(w http.ResponseWriter, verr *domain.ValidationError) error {
	//nolint:exhaustruct
	return WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:   http.StatusBadRequest,
		Errors: verr.Fields,
	})
}
