// Package error defines domain-specific errors for the Smart Accounting backend.
package error

import "errors"

// Smart accounting pipeline domain errors.
var (
	// ErrEmptySubmission is returned when a submission carries neither text nor candidates.
	ErrEmptySubmission = errors.New("submission has no content")

	// ErrExtractionFailed is returned when the AI extraction collaborator fails.
	ErrExtractionFailed = errors.New("candidate extraction failed")

	// ErrInvalidTransactionType is returned when a candidate's type is neither EXPENSE nor INCOME.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidSubmissionSource is returned when the submission source is not text, voice or image.
	ErrInvalidSubmissionSource = errors.New("invalid submission source")

	// ErrTransactionNotFound is returned when a transaction is not found in the system.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// SmartAccountingErrorCode defines error codes for smart accounting errors.
// Format: SMA-XXYYYY where XX is category and YYYY is specific error.
type SmartAccountingErrorCode string

const (
	// Submission errors (01XXXX)
	ErrCodeEmptySubmission         SmartAccountingErrorCode = "SMA-010001"
	ErrCodeInvalidTransactionType  SmartAccountingErrorCode = "SMA-010002"
	ErrCodeInvalidSubmissionSource SmartAccountingErrorCode = "SMA-010003"

	// Extraction errors (02XXXX)
	ErrCodeExtractionFailed SmartAccountingErrorCode = "SMA-020001"

	// Persistence errors (03XXXX)
	ErrCodeTransactionNotFound SmartAccountingErrorCode = "SMA-030001"
	ErrCodeStorageFailure      SmartAccountingErrorCode = "SMA-030002"
)

// SmartAccountingError represents a pipeline error with code and message.
type SmartAccountingError struct {
	Code    SmartAccountingErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *SmartAccountingError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *SmartAccountingError) Unwrap() error {
	return e.Err
}

// NewSmartAccountingError creates a new SmartAccountingError with the given code and message.
func NewSmartAccountingError(code SmartAccountingErrorCode, message string, err error) *SmartAccountingError {
	return &SmartAccountingError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
