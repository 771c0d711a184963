// Package profiles stores per-user app settings.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/mymind/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the user has no row yet.
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) error
}
