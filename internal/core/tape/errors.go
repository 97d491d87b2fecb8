package tape

import "errors"

// Sentinel errors for the tape service, following the convention of
// nazandr-cp-epoch-server/internal/services/epoch/errors.go (one
// package-level var block of wrapped, errors.Is-comparable sentinels).
var (
	ErrAlreadyExists     = errors.New("tape: address collision, record already exists")
	ErrUnauthorized      = errors.New("tape: authority mismatch")
	ErrUnexpectedState   = errors.New("tape: unexpected state for operation")
	ErrWriterMismatch    = errors.New("tape: writer does not belong to tape")
	ErrWriteFailed       = errors.New("tape: merkle write failed")
	ErrNotFound          = errors.New("tape: resource not found")
)
