package domain

import "errors"

var (
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidInput is returned when start parameters are malformed or
	// rejected by the configuration policy.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyTerminal marks an attempted mutation of a record that has
	// already reached a terminal status. It is a no-op condition, not a
	// hard failure: whichever transition won under the lock stands.
	ErrAlreadyTerminal = errors.New("session already terminal")
)
