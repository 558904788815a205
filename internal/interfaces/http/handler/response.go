package handler

// ValidationErrorResponse documents a 400 body: each invalid field maps to its messages
// @Description Field name to error messages, e.g. {"name": ["This field is required."]}
type ValidationErrorResponse map[string][]string

// ErrorResponse documents the body of non-field errors
// @Description Error messages not tied to a field
type ErrorResponse struct {
	Detail []string `json:"detail" example:"A server error occurred."`
}
