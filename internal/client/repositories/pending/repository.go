// Package pending journals local item changes whose remote write failed, so
// the next reload can push them again.
package pending

import (
	"context"

	"github.com/dmitrijs2005/mymind/internal/client/models"
)

type Repository interface {
	Put(ctx context.Context, w models.PendingWrite) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, owner string) ([]models.PendingWrite, error)
	Clear(ctx context.Context, owner string) error
}
