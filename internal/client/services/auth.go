// Package services contains the client's application services: the item
// mutation pipeline, authentication, and the session lock gate.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/mymind/internal/client/client"
	"github.com/dmitrijs2005/mymind/internal/client/models"
	"github.com/dmitrijs2005/mymind/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mymind/internal/common"
	"github.com/dmitrijs2005/mymind/internal/cryptox"
)

// AuthService owns the signed-in identity and its profile settings.
//
// Contract:
//   - Login: authenticate online, load the profile, cache the verifier locally.
//   - Logout: drop the identity and session tokens; cached credentials stay.
//   - UpdateSettings: change the profile locally, then persist it remotely.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) (*models.Profile, error)
	Logout(ctx context.Context) error
	Current() (models.Identity, bool)
	Owner() string
	Settings() models.Settings
	UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	ClearOfflineData(ctx context.Context) error
}

type authService struct {
	client client.Client
	meta   metadata.Repository

	mu      sync.RWMutex
	profile *models.Profile
}

func NewAuthService(c client.Client, meta metadata.Repository) AuthService {
	return &authService{client: c, meta: meta}
}

// Register generates a fresh salt and sends only the derived verifier.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	verifier := cryptox.VerifierFor(password, salt)
	return a.client.Register(ctx, username, salt, verifier)
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.Profile, error) {
	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get salt error: %w", err)
	}
	verifier := cryptox.VerifierFor(password, salt)

	userID, err := a.client.Login(ctx, username, verifier)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	settings, err := a.client.GetProfile(ctx, userID)
	if err != nil {
		a.client.Logout()
		return nil, fmt.Errorf("profile error: %w", err)
	}

	creds := metadata.Credentials{UserID: userID, Username: username, Salt: salt, Verifier: verifier}
	if err := a.meta.SaveCredentials(ctx, creds); err != nil {
		a.client.Logout()
		return nil, fmt.Errorf("offline data saving error: %w", err)
	}

	p := &models.Profile{Identity: models.Identity{UserID: userID, Username: username}, Settings: settings}
	a.mu.Lock()
	a.profile = p
	a.mu.Unlock()

	out := *p
	return &out, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.Logout()
	a.mu.Lock()
	a.profile = nil
	a.mu.Unlock()
	return nil
}

func (a *authService) Current() (models.Identity, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.profile == nil {
		return models.Identity{}, false
	}
	return a.profile.Identity, true
}

func (a *authService) Owner() string {
	id, _ := a.Current()
	return id.UserID
}

func (a *authService) Settings() models.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.profile == nil {
		return models.Settings{}
	}
	return a.profile.Settings
}

// UpdateSettings applies the patch locally before the remote call; a remote
// failure is returned but the local change stays.
func (a *authService) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	a.mu.Lock()
	if a.profile == nil {
		a.mu.Unlock()
		return models.Settings{}, ErrNoOwner
	}
	a.profile.Settings = patch.ApplyTo(a.profile.Settings)
	owner, local := a.profile.UserID, a.profile.Settings
	a.mu.Unlock()

	remote, err := a.client.UpdateProfile(ctx, owner, patch)
	if err != nil {
		return local, fmt.Errorf("update profile: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.profile != nil && a.profile.UserID == owner {
		a.profile.Settings = remote
	}
	return remote, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

// ClearOfflineData wipes the cached credentials.
func (a *authService) ClearOfflineData(ctx context.Context) error {
	return a.meta.Clear(ctx)
}
