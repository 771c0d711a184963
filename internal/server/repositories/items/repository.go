// Package items persists saved links for the backend.
package items

import (
	"context"

	"github.com/dmitrijs2005/mymind/internal/server/models"
)

type Repository interface {
	// FetchAll returns every row owned by userID, newest first, trashed
	// rows included.
	FetchAll(ctx context.Context, userID string) ([]models.Item, error)
	// Insert stores item and returns its id. Inserting an id the same user
	// already owns is a no-op; an id held by another user is
	// ErrorAlreadyExists.
	Insert(ctx context.Context, item *models.Item) (string, error)
	// Update sets the given columns. Only columns in UpdatableColumns are
	// accepted.
	Update(ctx context.Context, userID, id string, fields map[string]any) error
	Delete(ctx context.Context, userID, id string) error
	// DeleteMany removes the listed rows and reports how many existed.
	DeleteMany(ctx context.Context, userID string, ids []string) (int64, error)
}

// UpdatableColumns lists the columns a partial update may touch.
var UpdatableColumns = map[string]bool{
	"url":         true,
	"title":       true,
	"thumbnail":   true,
	"platform":    true,
	"category":    true,
	"tags":        true,
	"deleted_at":  true,
	"reviewed_at": true,
}
