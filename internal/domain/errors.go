package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so wrapped failures
// compare equal to the sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeMalformedResponse   = "MALFORMED_RESPONSE"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

var (
	// ErrUpstreamUnavailable covers network failures and error statuses from the recommendation service.
	ErrUpstreamUnavailable = NewDomainError(ErrCodeUpstreamUnavailable, "recommendation service unavailable")
	// ErrMalformedResponse is returned when recommendation_text is not valid JSON.
	ErrMalformedResponse = NewDomainError(ErrCodeMalformedResponse, "malformed recommendation response")
	ErrInvalidSelection  = NewDomainError(ErrCodeValidation, "invalid filter selection")
)
