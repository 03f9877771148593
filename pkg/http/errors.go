package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the standard API error shape. The lockout hints are
// pointers so they disappear from the JSON when not applicable.
type ErrorResponse struct {
	Error             string `json:"error"`             // machine-readable code
	Message           string `json:"message"`           // human-readable message
	AttemptsRemaining *int   `json:"attempts_remaining,omitempty"`
	RetryAfterHours   *int   `json:"retry_after_hours,omitempty"`
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	writeErrorResponse(w, statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}

// WriteInvalidCredentials reports a failed login. attemptsRemaining < 0
// means the hint is not derivable and is omitted.
func WriteInvalidCredentials(w http.ResponseWriter, attemptsRemaining int) {
	resp := ErrorResponse{
		Error:   "invalid_credentials",
		Message: "Invalid email or password",
	}
	if attemptsRemaining >= 0 {
		resp.AttemptsRemaining = &attemptsRemaining
	}
	writeErrorResponse(w, http.StatusUnauthorized, resp)
}

// WriteAccountLocked reports an account-level lockout with the retry hint.
func WriteAccountLocked(w http.ResponseWriter, retryAfterHours int) {
	writeErrorResponse(w, http.StatusLocked, ErrorResponse{
		Error:           "account_locked",
		Message:         "Account temporarily locked due to repeated failed login attempts",
		RetryAfterHours: &retryAfterHours,
	})
}

// WriteIPLocked reports an address-level lockout with the retry hint.
func WriteIPLocked(w http.ResponseWriter, retryAfterHours int) {
	writeErrorResponse(w, http.StatusTooManyRequests, ErrorResponse{
		Error:           "too_many_attempts",
		Message:         "Too many failed login attempts from this address",
		RetryAfterHours: &retryAfterHours,
	})
}
