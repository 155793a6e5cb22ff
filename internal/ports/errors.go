package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these sentinels so the
// reconciliation layer can classify failures without knowing the transport.
var (
	// General
	ErrUnknown         = errors.New("unknown error occurred")
	ErrInvalidRequest  = errors.New("invalid request parameters or format")
	ErrNotFound        = errors.New("resource not found")
	ErrTimeout         = errors.New("operation timed out")
	ErrContextCanceled = errors.New("operation canceled via context")

	// Transport
	ErrConnectionFailed = errors.New("failed to connect to the backend")
	ErrUnauthorized     = errors.New("backend rejected credentials")
	ErrServerRejected   = errors.New("backend rejected the request")
	ErrServerError      = errors.New("backend internal error")
	ErrDecodeFailed     = errors.New("failed to decode backend response")
	ErrNotConnected     = errors.New("push channel is not connected")

	// Client-side
	ErrValidation = errors.New("invalid input")

	// Local cache
	ErrCacheQueryFailed  = errors.New("cache query failed")
	ErrCacheUpdateFailed = errors.New("cache update failed")
)
