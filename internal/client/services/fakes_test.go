package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/mymind/internal/client/client"
	"github.com/dmitrijs2005/mymind/internal/client/migrations"
	"github.com/dmitrijs2005/mymind/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

type staticOwner string

func (o staticOwner) Owner() string { return string(o) }

type updateCall struct {
	owner string
	id    string
	patch models.Patch
}

// fakeClient implements client.Client for service tests.
type fakeClient struct {
	client.Client

	mu sync.Mutex

	items    []models.Item
	fetchErr error

	insertIDs  []string
	insertErr  error
	insertHook func(models.Item)
	inserted   []models.Item

	updateErr error
	updates   []updateCall

	deleteErr error
	deletes   []string

	deleteManyErr error
	deleteMany    [][]string

	salt        []byte
	saltErr     error
	loginID     string
	loginErr    error
	registerErr error
	registered  []string
	loggedOut   int

	profile          models.Settings
	profileErr       error
	updateProfileErr error
	profilePatches   []models.SettingsPatch

	pingErr  error
	closeErr error
}

func (f *fakeClient) FetchAll(ctx context.Context, owner string) ([]models.Item, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.items, nil
}

func (f *fakeClient) Insert(ctx context.Context, item models.Item) (string, error) {
	if f.insertHook != nil {
		f.insertHook(item)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.inserted = append(f.inserted, item)
	id := "srv-" + item.ID
	if len(f.insertIDs) > 0 {
		id, f.insertIDs = f.insertIDs[0], f.insertIDs[1:]
	}
	return id, nil
}

func (f *fakeClient) Update(ctx context.Context, owner, id string, patch models.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{owner: owner, id: id, patch: patch})
	return f.updateErr
}

func (f *fakeClient) Delete(ctx context.Context, owner, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

func (f *fakeClient) DeleteMany(ctx context.Context, owner string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteMany = append(f.deleteMany, ids)
	return f.deleteManyErr
}

func (f *fakeClient) Register(ctx context.Context, username string, salt []byte, verifier []byte) error {
	f.registered = append(f.registered, username)
	return f.registerErr
}

func (f *fakeClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	return f.salt, f.saltErr
}

func (f *fakeClient) Login(ctx context.Context, username string, verifier []byte) (string, error) {
	return f.loginID, f.loginErr
}

func (f *fakeClient) Logout() { f.loggedOut++ }

func (f *fakeClient) GetProfile(ctx context.Context, owner string) (models.Settings, error) {
	return f.profile, f.profileErr
}

func (f *fakeClient) UpdateProfile(ctx context.Context, owner string, patch models.SettingsPatch) (models.Settings, error) {
	f.profilePatches = append(f.profilePatches, patch)
	if f.updateProfileErr != nil {
		return models.Settings{}, f.updateProfileErr
	}
	f.profile = patch.ApplyTo(f.profile)
	return f.profile, nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) Close() error { return f.closeErr }
