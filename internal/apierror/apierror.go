// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Fields: fields}
}

// StockConflict is the envelope for 409 responses when a sale operation is
// rejected for insufficient stock. Available lets the client adjust the
// request without a second round trip.
type StockConflict struct {
	Detail    string `json:"detail"`
	CarID     string `json:"car_id"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}
