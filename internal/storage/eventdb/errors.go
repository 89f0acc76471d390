package eventdb

import (
	"errors"
	"fmt"
)

var (
	ErrArchiveClosed = errors.New("event archive is closed")
	ErrInvalidDriver = errors.New("invalid event archive driver")
	ErrMissingDSN    = errors.New("event archive dsn is required")
	ErrInvalidLimit  = errors.New("invalid query limit")
)

// ArchiveError records which archive operation failed.
type ArchiveError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *ArchiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

func (e *ArchiveError) Unwrap() error {
	return e.Cause
}

func newError(op, msg string, cause error) error {
	return &ArchiveError{Operation: op, Message: msg, Cause: cause}
}
