package client

import "errors"

var (
	// ErrUnavailable means the server could not be reached in time. Callers
	// treat it as "offline", not as a rejection.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is returned when credentials or tokens are rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrLocalDataNotAvailable means no offline credentials are cached.
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
