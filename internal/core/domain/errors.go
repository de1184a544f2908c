package domain

import "errors"

var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidPayload      = errors.New("invalid data")
	ErrInvalidInput        = errors.New("invalid input")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrDestinationNotFound = errors.New("destination not found")
	// ErrPartialFailure is returned by a dispatch when at least one
	// destination could not be delivered to.
	ErrPartialFailure = errors.New("failed to send data to some destinations")
)
