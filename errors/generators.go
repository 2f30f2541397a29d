package errors

import "fmt"

// NewResourceNotFoundError returns a new ErrNotFound error with kind
// KindResourceNotFound and the given message.
func NewResourceNotFoundError(message string, details Details) error {
	return Error{
		Code:    ErrNotFound,
		Kind:    KindResourceNotFound,
		Message: message,
		Details: details,
	}
}

// NewInternalError returns a new ErrInternal error with the given message.
func NewInternalError(message string, details Details) error {
	return Error{
		Code:    ErrInternal,
		Message: message,
		Details: details,
	}
}

// NewInternalErrorFromErr returns a new ErrInternal error wrapping the given
// one.
func NewInternalErrorFromErr(err error, message string, details Details) error {
	return Error{
		Code:    ErrInternal,
		Err:     err,
		Message: message,
		Details: details,
	}
}

// NewRejectionError returns an ErrBadRequest error with the given Kind. It is
// used for operations that are not allowed in the current state and need to be
// reported to the player.
func NewRejectionError(kind Kind, message string, details Details) error {
	return Error{
		Code:    ErrBadRequest,
		Kind:    kind,
		Message: message,
		Details: details,
	}
}

// NewMatchPhaseViolationError returns a rejection with kind
// KindMatchPhaseViolation for the given operation.
func NewMatchPhaseViolationError(operation string, phase interface{}) error {
	return NewRejectionError(KindMatchPhaseViolation, fmt.Sprintf("%s not allowed in phase %v", operation, phase),
		Details{"operation": operation, "phase": phase})
}

// NewExecQueryError returns an ErrInternal error for a failed query execution.
func NewExecQueryError(err error, message string, query string) error {
	return Error{
		Code:    ErrInternal,
		Err:     err,
		Message: message,
		Details: Details{"query": query},
	}
}

// NewScanDBRowError returns an ErrInternal error for a failed row scan.
func NewScanDBRowError(err error, message string, query string) error {
	return Error{
		Code:    ErrInternal,
		Err:     err,
		Message: message,
		Details: Details{"query": query},
	}
}

// NewDBTxBeginError returns an ErrInternal error for a failed transaction
// begin.
func NewDBTxBeginError(err error) error {
	return Error{
		Code:    ErrInternal,
		Err:     err,
		Message: "begin tx",
	}
}

// NewDBTxCommitError returns an ErrInternal error for a failed transaction
// commit.
func NewDBTxCommitError(err error) error {
	return Error{
		Code:    ErrInternal,
		Err:     err,
		Message: "commit tx",
	}
}
