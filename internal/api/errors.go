package api

import (
	"net/http"

	"github.com/librefy/librefy-cli/internal/common"
)

// FieldError is one field-level validation failure reported by the server.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a server-reported failure: either a non-2xx status or a decoded
// envelope with success=false. Message carries the user-facing text verbatim.
type Error struct {
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

// Unwrap maps well-known statuses onto the shared sentinels so callers can
// use errors.Is(err, common.ErrUnauthorized) and friends.
func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return common.ErrUnavailable
	}
	return nil
}
