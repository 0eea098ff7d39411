// Package common defines sentinel errors and constants shared by the POS
// client and the sandbox server of record. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable reports that the local structured store cannot be
	// read or written (closed handle, locked file, disk full). Read paths
	// degrade to network-only; safety-critical write paths surface it.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrValidation marks a payload the server of record refused to accept.
	ErrValidation = errors.New("validation error")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidCSRF  = errors.New("invalid csrf token")
)
