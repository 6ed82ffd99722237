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

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeFormat        = "FORMAT_ERROR"
	ErrCodeTransport     = "TRANSPORT_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodePersistence   = "PERSISTENCE_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidDocumentStatus = NewDomainError(ErrCodeValidation, "invalid document status")
	ErrInvalidRiskLevel      = NewDomainError(ErrCodeValidation, "invalid risk level")
	ErrMissingRequiredField  = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDocumentNotFound     = NewDomainError(ErrCodeNotFound, "document not found")
	ErrDocumentFileNotFound = NewDomainError(ErrCodeNotFound, "document file not found in storage")
	ErrAnalysisJobNotFound  = NewDomainError(ErrCodeNotFound, "analysis job not found")
)

// Persistence errors
var (
	ErrStorageOperationFail = NewDomainError(ErrCodePersistence, "storage operation failed")
)

// NewTransportError wraps a network or provider transport failure.
func NewTransportError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeTransport, message, err)
}

// NewFormatError wraps a model-output parse or schema failure.
func NewFormatError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeFormat, message, err)
}

// NewPersistenceError wraps a record-store write failure.
func NewPersistenceError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodePersistence, message, err)
}
