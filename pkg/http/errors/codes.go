package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Library errors
	ErrCodeQuizNotFound    = "quiz_not_found"
	ErrCodeInvalidQuizID   = "invalid_quiz_id"
	ErrCodeSaveFailed      = "save_failed"
	ErrCodeListFailed      = "list_failed"
	ErrCodeLibraryDisabled = "library_disabled"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
