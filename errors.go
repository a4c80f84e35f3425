package splitflap

import "errors"

// Predefined error types, checked with errors.Is
var (
	// ErrOpenFailure wraps any error returned by Connection.Open
	ErrOpenFailure = errors.New("failed to open connection")
	// ErrMissingEndpoints means the connection opened without a readable or writable side
	ErrMissingEndpoints = errors.New("connection missing readable or writable endpoint")
	ErrWriteFailure     = errors.New("write to connection failed")
	ErrReadFailure      = errors.New("read from connection failed")

	// ErrUnavailable is returned once the driver's connection has been invalidated.
	// A new Connection and a new Driver are required to talk to the device again.
	ErrUnavailable    = errors.New("driver connection is no longer available")
	ErrAlreadyStarted = errors.New("driver session already started")
	ErrCapabilityHeld = errors.New("capability already held for this session")

	ErrInvalidConfig   = errors.New("invalid driver configuration")
	ErrInvalidBaudRate = errors.New("invalid baud rate")
)
