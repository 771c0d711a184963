package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/mymind/internal/common"
	"github.com/dmitrijs2005/mymind/internal/dbx"
	"github.com/dmitrijs2005/mymind/internal/server/models"
	"github.com/dmitrijs2005/mymind/internal/server/repositories/items"
	"github.com/dmitrijs2005/mymind/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/mymind/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/mymind/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error
	getOut    *models.User
	getErr    error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRefreshRepo struct {
	findOut    *models.RefreshToken
	findErr    error
	consumeErr error
	createErr  error
	expiredErr error

	created  []string
	consumed []string
	expired  int
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Consume(ctx context.Context, token string) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	f.consumed = append(f.consumed, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context, userID string, now time.Time) (int64, error) {
	f.expired++
	return 0, f.expiredErr
}

type updateCall struct {
	userID, id string
	fields     map[string]any
}

type fakeItemsRepo struct {
	rows      []models.Item
	fetchErr  error
	inserted  []models.Item
	insertErr error
	updates   []updateCall
	updateErr error
	deleted   []string
	deleteErr error
	many      []string
}

func (f *fakeItemsRepo) FetchAll(ctx context.Context, userID string) ([]models.Item, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]models.Item, 0, len(f.rows))
	for _, it := range f.rows {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItemsRepo) Insert(ctx context.Context, item *models.Item) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.inserted = append(f.inserted, *item)
	return item.ID, nil
}

func (f *fakeItemsRepo) Update(ctx context.Context, userID, id string, fields map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, updateCall{userID, id, fields})
	return nil
}

func (f *fakeItemsRepo) Delete(ctx context.Context, userID, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeItemsRepo) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	f.many = append(f.many, ids...)
	return int64(len(ids)), nil
}

type fakeProfilesRepo struct {
	rows      map[string]models.Profile
	getErr    error
	upsertErr error
}

func (f *fakeProfilesRepo) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (f *fakeProfilesRepo) Upsert(ctx context.Context, p *models.Profile) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.rows == nil {
		f.rows = map[string]models.Profile{}
	}
	f.rows[p.UserID] = *p
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	i *fakeItemsRepo
	p *fakeProfilesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Items(dbx.DBTX) items.Repository                 { return m.i }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository           { return m.p }
