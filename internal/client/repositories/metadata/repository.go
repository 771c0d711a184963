// Package metadata keeps small key/value facts about the local installation,
// most importantly the cached credential verifier used by the unlock prompt.
package metadata

import (
	"context"
	"errors"
)

// ErrNoCredentials is returned when nobody has logged in on this device yet.
var ErrNoCredentials = errors.New("no cached credentials")

// Credentials is what a successful login leaves behind for offline checks.
type Credentials struct {
	UserID   string
	Username string
	Salt     []byte
	Verifier []byte
}

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error

	SaveCredentials(ctx context.Context, c Credentials) error
	LoadCredentials(ctx context.Context) (*Credentials, error)
}
