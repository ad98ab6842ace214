package domain

import "errors"

var (
	// Configuration errors are fatal to the request and surface as a server error.
	ErrMissingConfig = errors.New("missing required configuration")
	ErrDemoNotFound  = errors.New("demo not found")

	// Credential errors
	ErrTokenSigning = errors.New("failed to issue participant token")

	// Room service errors. These are best-effort and never fail a bootstrap.
	ErrRoomRegistration = errors.New("room registration failed")
	ErrAgentDispatch    = errors.New("agent dispatch failed")

	ErrInvalidInput = errors.New("invalid input")
)

// DomainError wraps a domain error with additional context
type DomainError struct {
	Err     error
	Message string
	Code    string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Err.Error() + ": " + e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NewDomainError(err error, message string) *DomainError {
	return &DomainError{
		Err:     err,
		Message: message,
	}
}

func NewDomainErrorWithCode(err error, message, code string) *DomainError {
	return &DomainError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// IsFatal reports whether err must fail the request rather than be logged and ignored.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMissingConfig) || errors.Is(err, ErrTokenSigning) || errors.Is(err, ErrDemoNotFound)
}
