package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOwner means nobody is signed in; the call did nothing.
	ErrNoOwner          = errors.New("no signed-in owner")
	ErrUnknownItem      = errors.New("unknown item")
	ErrNotInTrash       = errors.New("item is not in the trash")
	ErrRetentionExpired = errors.New("item is past the retention window")
	ErrEmptyURL         = errors.New("url is empty")
	// ErrInvalidURL rejects anything that is not an http(s) link with a host.
	ErrInvalidURL = errors.New("url must start with http:// or https://")
)

// AddError reports a failed save. URL is what the user entered so the
// caller can show it again and retry.
type AddError struct {
	URL string
	Err error
}

func (e *AddError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.URL, e.Err)
}

func (e *AddError) Unwrap() error { return e.Err }
