// Package common defines shared constants and sentinel errors used across
// the Librefy client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrNetwork     = errors.New("network error")
	ErrUnavailable = errors.New("server unavailable")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
	ErrNoSession    = errors.New("no saved session")

	// Local-state errors.
	ErrNotFound = errors.New("not found")
)
