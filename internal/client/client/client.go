package client

import (
	"context"

	"github.com/dmitrijs2005/mymind/internal/client/models"
)

// Client is the remote side of the application. Every item and profile call
// is scoped to an owner; the server rejects owners other than the caller.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Register(ctx context.Context, username string, salt []byte, verifier []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	// Login returns the user id the session is bound to.
	Login(ctx context.Context, username string, verifier []byte) (string, error)
	Logout()

	FetchAll(ctx context.Context, owner string) ([]models.Item, error)
	Insert(ctx context.Context, item models.Item) (string, error)
	Update(ctx context.Context, owner, id string, patch models.Patch) error
	Delete(ctx context.Context, owner, id string) error
	DeleteMany(ctx context.Context, owner string, ids []string) error

	GetProfile(ctx context.Context, owner string) (models.Settings, error)
	UpdateProfile(ctx context.Context, owner string, patch models.SettingsPatch) (models.Settings, error)
}
