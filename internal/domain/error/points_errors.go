// Package error defines domain-specific errors for the Smart Accounting backend.
package error

import "errors"

// Points ledger domain errors.
var (
	// ErrInsufficientPoints is returned when the combined balance cannot cover a paid action.
	ErrInsufficientPoints = errors.New("insufficient points balance")

	// ErrAlreadyCheckedIn is returned when the user already checked in today.
	ErrAlreadyCheckedIn = errors.New("already checked in today")

	// ErrPointsAccountNotFound is returned when a points account is missing where one is required.
	ErrPointsAccountNotFound = errors.New("points account not found")

	// ErrInvalidPointsAmount is returned when a credit is requested with a non-positive amount.
	ErrInvalidPointsAmount = errors.New("points amount must be positive")

	// ErrInvalidBalancePool is returned when an unknown balance pool is named.
	ErrInvalidBalancePool = errors.New("invalid balance pool")
)

// PointsErrorCode defines error codes for points ledger errors.
// Format: PTS-XXYYYY where XX is category and YYYY is specific error.
type PointsErrorCode string

const (
	// Balance errors (01XXXX)
	ErrCodeInsufficientPoints  PointsErrorCode = "PTS-010001"
	ErrCodeInvalidPointsAmount PointsErrorCode = "PTS-010002"
	ErrCodeInvalidBalancePool  PointsErrorCode = "PTS-010003"

	// Grant errors (02XXXX)
	ErrCodeAlreadyCheckedIn PointsErrorCode = "PTS-020001"

	// Account errors (03XXXX)
	ErrCodePointsAccountNotFound PointsErrorCode = "PTS-030001"
	ErrCodePointsStorageFailure  PointsErrorCode = "PTS-030002"
)

// PointsError represents a points ledger error with code and message.
type PointsError struct {
	Code    PointsErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *PointsError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *PointsError) Unwrap() error {
	return e.Err
}

// NewPointsError creates a new PointsError with the given code and message.
func NewPointsError(code PointsErrorCode, message string, err error) *PointsError {
	return &PointsError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
