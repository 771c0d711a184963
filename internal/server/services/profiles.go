package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/mymind/internal/common"
	"github.com/dmitrijs2005/mymind/internal/dbx"
	"github.com/dmitrijs2005/mymind/internal/server/models"
	"github.com/dmitrijs2005/mymind/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/mymind/internal/server/repositories/repomanager"
)

// ProfileService reads and writes the per-user settings payload.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// Get never reports a missing row; such a user has every setting off.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	return getOrDefault(ctx, s.repomanager.Profiles(s.db), userID)
}

// Update changes only the settings that are non-nil.
func (s *ProfileService) Update(ctx context.Context, userID string, appLock, biometric *bool) (*models.Profile, error) {
	var out *models.Profile
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Profiles(tx)
		p, err := getOrDefault(ctx, repo, userID)
		if err != nil {
			return err
		}
		if appLock != nil {
			p.AppLockEnabled = *appLock
		}
		if biometric != nil {
			p.BiometricRegistered = *biometric
		}
		if err := repo.Upsert(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func getOrDefault(ctx context.Context, repo profiles.Repository, userID string) (*models.Profile, error) {
	p, err := repo.Get(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return &models.Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
