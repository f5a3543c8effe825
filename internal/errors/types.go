package errors

import "errors"

var (
	ErrConfigInvalid       = errors.New("ledger configuration invalid")
	ErrRunRequestFailed    = errors.New("container run request rejected")
	ErrHealthCheckFailed   = errors.New("container health check failed")
	ErrNotStarted          = errors.New("ledger container not started")
	ErrNoContainer         = errors.New("no container associated with this handle")
	ErrNoNetwork           = errors.New("container has no attached network")
	ErrManifestNotFound    = errors.New("manifest file not found")
	ErrManifestParseFailed = errors.New("manifest parsing failed")
	ErrRuntimeFailed       = errors.New("runtime operation failed")
	ErrStateInvalid        = errors.New("harness state invalid")
)

type LedgerKitError struct {
	Type        error
	Context     string
	Cause       string
	Suggestion  string
	OriginalErr error
}

func (e *LedgerKitError) Error() string {
	return e.OriginalErr.Error()
}

func (e *LedgerKitError) Unwrap() error {
	return e.OriginalErr
}

func NewLedgerKitError(errorType error, context, cause, suggestion string, originalErr error) *LedgerKitError {
	return &LedgerKitError{
		Type:        errorType,
		Context:     context,
		Cause:       cause,
		Suggestion:  suggestion,
		OriginalErr: originalErr,
	}
}

func NewConfigError(context, cause, suggestion string, originalErr error) *LedgerKitError {
	return NewLedgerKitError(ErrConfigInvalid, context, cause, suggestion, originalErr)
}

func NewRunRequestError(context, cause, suggestion string, originalErr error) *LedgerKitError {
	return NewLedgerKitError(ErrRunRequestFailed, context, cause, suggestion, originalErr)
}

func NewHealthCheckError(context, cause, suggestion string, originalErr error) *LedgerKitError {
	return NewLedgerKitError(ErrHealthCheckFailed, context, cause, suggestion, originalErr)
}

func NewNotStartedError(context, cause, suggestion string, originalErr error) *LedgerKitError {
	return NewLedgerKitError(ErrNotStarted, context, cause, suggestion, originalErr)
}

func NewNoContainerError(context, cause, suggestion string, originalErr error) *LedgerKitError {
	return NewLedgerKitError(ErrNoContainer, context, cause, suggestion, originalErr)
}

func NewNoNetworkError(context, cause, suggestion string, originalErr error) *LedgerKitError {
	return NewLedgerKitError(ErrNoNetwork, context, cause, suggestion, originalErr)
}

func NewManifestError(context, cause, suggestion string, originalErr error) *LedgerKitError {
	return NewLedgerKitError(ErrManifestNotFound, context, cause, suggestion, originalErr)
}

func NewParseError(context, cause, suggestion string, originalErr error) *LedgerKitError {
	return NewLedgerKitError(ErrManifestParseFailed, context, cause, suggestion, originalErr)
}

func NewRuntimeError(context, cause, suggestion string, originalErr error) *LedgerKitError {
	return NewLedgerKitError(ErrRuntimeFailed, context, cause, suggestion, originalErr)
}

func NewStateError(context, cause, suggestion string, originalErr error) *LedgerKitError {
	return NewLedgerKitError(ErrStateInvalid, context, cause, suggestion, originalErr)
}
