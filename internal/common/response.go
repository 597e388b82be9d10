package common

import (
	"encoding/json"
	"net/http"
)

// Error codes understood by storefront consumers. Clients switch on
// the code, not the HTTP status.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeValidation   = "VALIDATION"
	CodeInvalidOrder = "INVALID_ORDER"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL"
)

// ErrorBody is the payload carried under the "error" key of every
// non-2xx response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// JSON writes v to the response as JSON with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders the canonical error envelope.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, errorEnvelope{Error: ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// BadRequest rejects a request whose body could not be read as JSON.
func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, http.StatusBadRequest, CodeBadRequest, message, nil)
}

// Validation reports field-level failures of a well-formed document.
// Details carries one entry per failing field.
func Validation(w http.ResponseWriter, message string, details any) {
	JSONError(w, http.StatusUnprocessableEntity, CodeValidation, message, details)
}

// InvalidOrder reports a document that validated field by field but
// fails the order's own consistency rules (mixed currencies, bad IDs).
func InvalidOrder(w http.ResponseWriter, message string) {
	JSONError(w, http.StatusUnprocessableEntity, CodeInvalidOrder, message, nil)
}

// NotFound reports a missing resource.
func NotFound(w http.ResponseWriter, message string) {
	JSONError(w, http.StatusNotFound, CodeNotFound, message, nil)
}

// Internal reports a server-side failure without leaking its cause.
func Internal(w http.ResponseWriter, message string) {
	JSONError(w, http.StatusInternalServerError, CodeInternal, message, nil)
}
