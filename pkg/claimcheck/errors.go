package claimcheck

import "github.com/azsbx/extended-client/pkg/errors"

// Error codes for claim-check operations, layered on pkg/errors.AppError
// so callers can switch on Code without importing this package's types.
const (
	CodeConfigInvalid     = "CLAIMCHECK_CONFIG_INVALID"
	CodePropertyTooMany   = "CLAIMCHECK_PROPERTY_TOO_MANY"
	CodePropertyReserved  = "CLAIMCHECK_PROPERTY_RESERVED"
	CodePropertyTooLarge  = "CLAIMCHECK_PROPERTY_TOO_LARGE"
	CodeBackendFailure    = "CLAIMCHECK_BACKEND_FAILURE"
	CodeNotFound          = "CLAIMCHECK_NOT_FOUND"
	CodeSendFailed        = "CLAIMCHECK_SEND_FAILED"
	CodeReceiveFailed     = "CLAIMCHECK_RECEIVE_FAILED"
	CodePointerInvalid    = "CLAIMCHECK_POINTER_INVALID"
)

// ErrConfigInvalid reports a rejected configuration mutation (C2/C4).
// The caller's prior configuration is left untouched.
func ErrConfigInvalid(message string, cause error) *errors.AppError {
	return errors.New(CodeConfigInvalid, message, cause)
}

// ErrPropertyTooMany reports more user properties than maxAllowedProperties permits.
func ErrPropertyTooMany(count, max int) *errors.AppError {
	return errors.New(CodePropertyTooMany, propertyTooManyMessage(count, max), nil)
}

// ErrPropertyReserved reports a user property keyed with a reserved name.
func ErrPropertyReserved(key string) *errors.AppError {
	return errors.New(CodePropertyReserved, "property key is reserved: "+key, nil)
}

// ErrPropertyTooLarge reports the property set's encoded size exceeding maxBytes.
func ErrPropertyTooLarge(size, max int) *errors.AppError {
	return errors.New(CodePropertyTooLarge, propertyTooLargeMessage(size, max), nil)
}

// ErrBackendFailure wraps a transport-level failure from the broker or
// payload store that is not itself a not-found condition.
func ErrBackendFailure(message string, cause error) *errors.AppError {
	return errors.New(CodeBackendFailure, message, cause)
}

// ErrPointerInvalid reports a pointer record that failed to decode or
// decoded to an empty container/key (C1).
func ErrPointerInvalid(message string, cause error) *errors.AppError {
	return errors.New(CodePointerInvalid, message, cause)
}

// ErrNotFound reports a missing payload blob when ignorePayloadNotFound is false.
func ErrNotFound(message string, cause error) *errors.AppError {
	return errors.New(CodeNotFound, message, cause)
}

// ErrSendFailed is the umbrella kind for any failure in the send pipeline (C6).
func ErrSendFailed(cause error) *errors.AppError {
	return errors.New(CodeSendFailed, "claim-check send failed", cause)
}

// ErrReceiveFailed is the umbrella kind for any failure in the receive pipeline (C7).
func ErrReceiveFailed(cause error) *errors.AppError {
	return errors.New(CodeReceiveFailed, "claim-check receive failed", cause)
}
