package dto

// APIError is the uniform error body returned by every endpoint.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes carried in the response body alongside the HTTP status.
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeInternalError = "internal_error"
	ErrCodeValidation    = "validation_error"
)

// NotFoundError reports a missing resource, such as an order or a run.
func NotFoundError(resource string) APIError {
	return APIError{Code: ErrCodeNotFound, Message: resource + " not found"}
}

// BadRequestError reports an unreadable or unparsable request.
func BadRequestError(message string) APIError {
	return APIError{Code: ErrCodeBadRequest, Message: message}
}

// InternalError reports a storage or encoding failure without leaking detail.
func InternalError() APIError {
	return APIError{Code: ErrCodeInternalError, Message: "an internal error occurred"}
}

// ValidationError reports a well-formed request that fails validation.
func ValidationError(message string) APIError {
	return APIError{Code: ErrCodeValidation, Message: message}
}
