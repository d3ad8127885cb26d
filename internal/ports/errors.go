package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur during external service
// interactions.
var (
	// ErrRateLimited indicates that the service has rate limited the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates that the external service is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrAuthenticationFailed indicates that authentication with the
	// service failed.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// DatasetError represents an error from dataset cache or catalog
// operations. It includes the dataset identifier and operation that
// failed.
type DatasetError struct {
	// ID is the dataset identifier involved in the failed operation.
	ID string

	// Operation is the name of the operation that failed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for DatasetError.
func (e *DatasetError) Error() string {
	return fmt.Sprintf("dataset error: operation=%s, id=%s, err=%v", e.Operation, e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *DatasetError) Unwrap() error { return e.Err }
