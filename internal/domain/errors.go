package domain

import "errors"

// Error kinds shared by every layer. Wrap with fmt.Errorf("...: %w", Err...)
// and test with errors.Is.
var (
	// ErrValidation is returned for invalid user input, before any store call.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when an operation references an unknown id.
	ErrNotFound = errors.New("hyperlink not found")
	// ErrPersistence is returned when the local store fails to read or write.
	ErrPersistence = errors.New("local store failure")
	// ErrRemoteUnavailable is returned for any remote store or network failure.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	// ErrStoreUnsupported is returned when no usable local store exists on this platform.
	ErrStoreUnsupported = errors.New("local store not supported")
	// ErrStoreNotInitialized is returned when a local store is used before Init.
	ErrStoreNotInitialized = errors.New("local store not initialized")
)
