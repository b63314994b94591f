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
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeUnavailable   = "UNAVAILABLE"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidDocumentType  = NewDomainError(ErrCodeValidation, "invalid document type")
	ErrEmptyContent         = NewDomainError(ErrCodeValidation, "document content is empty")
	ErrEmptyQuestion        = NewDomainError(ErrCodeValidation, "question is empty")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrMetaKeyNotFound  = NewDomainError(ErrCodeNotFound, "index metadata key not found")
)

// Conflict errors
var (
	// ErrEmbeddingVersionMismatch guards against mixing embedding spaces:
	// vectors written by one provider version must never be searched with
	// query vectors from another.
	ErrEmbeddingVersionMismatch = NewDomainError(ErrCodeConflict, "index embedding provider version does not match configured provider")
	ErrIngestionInProgress      = NewDomainError(ErrCodeConflict, "an ingestion run is already in progress")
)

// Availability errors
var (
	ErrIndexNotLoaded = NewDomainError(ErrCodeUnavailable, "knowledge base not initialized")
)

// Authorization errors
var (
	ErrInvalidAdminToken = NewDomainError(ErrCodeUnauthorized, "invalid admin token")
)
