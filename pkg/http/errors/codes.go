package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"
	ErrCodeLoginFailed            = "login_failed"

	// Request errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Resource errors
	ErrCodeNotFound         = "not_found"
	ErrCodeCategoryNotFound = "category_not_found"
	ErrCodePackNotFound     = "pack_not_found"
	ErrCodeSessionNotFound  = "session_not_found"
	ErrCodeVersionConflict  = "version_conflict"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
