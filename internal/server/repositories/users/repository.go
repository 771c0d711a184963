// Package users declares and implements persistence for registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/mymind/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in its id. A taken username yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
