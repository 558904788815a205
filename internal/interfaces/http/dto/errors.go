// Package dto holds the error bodies shared by every HTTP handler.
//
// Errors follow the shape clients of this API already parse: a validation
// failure is an object mapping each field to its messages, and any other
// error is an object with a "detail" list.
package dto

import "net/http"

// Common messages
const (
	MsgRequired       = "This field is required."
	MsgBlank          = "This field may not be blank."
	MsgInvalidURL     = "Enter a valid URL."
	MsgInvalidValue   = "Invalid value."
	MsgServerError    = "A server error occurred."
	MsgThrottled      = "Request was throttled."
	MsgBodyTooLarge   = "Request body exceeds maximum allowed size."
	MsgConflict       = "The resource was modified concurrently. Please retry."
	jsonParseErrorTag = "JSON parse error - "
)

// FieldErrors is the body of a 400 validation response: field name to messages
type FieldErrors map[string][]string

// Add appends a message to a field
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// DetailResponse is the body of errors not tied to a single field
type DetailResponse struct {
	Detail []string `json:"detail" example:"A server error occurred."`
}

// NewDetail creates a detail body
func NewDetail(messages ...string) DetailResponse {
	return DetailResponse{Detail: messages}
}

// JSONParseError creates the detail body of a malformed request
func JSONParseError(cause error) DetailResponse {
	return NewDetail(jsonParseErrorTag + cause.Error())
}

// domainCodeStatus maps domain error codes to HTTP status codes
var domainCodeStatus = map[string]int{
	"NOT_FOUND":            http.StatusNotFound,
	"INVALID_INPUT":        http.StatusBadRequest,
	"ALREADY_EXISTS":       http.StatusBadRequest,
	"INVALID_STATE":        http.StatusBadRequest,
	"INVALID_FILE":         http.StatusBadRequest,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
}

// StatusForCode returns the HTTP status of a domain error code, 500 when unknown
func StatusForCode(code string) int {
	if status, ok := domainCodeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
