package grpc

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/mymind/internal/logging"
	"github.com/dmitrijs2005/mymind/internal/server/models"
	"github.com/dmitrijs2005/mymind/internal/server/services"
)

type fakeUsers struct {
	refreshResp *services.TokenPair
	refreshErr  error
	regResp     *models.User
	regErr      error
	saltResp    []byte
	saltErr     error
	loginResp   *services.TokenPair
	loginErr    error
}

func (f *fakeUsers) RefreshToken(ctx context.Context, refresh string) (*services.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}

func (f *fakeUsers) Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error) {
	return f.regResp, f.regErr
}

func (f *fakeUsers) GetSalt(ctx context.Context, username string) ([]byte, error) {
	return f.saltResp, f.saltErr
}

func (f *fakeUsers) Login(ctx context.Context, username string, verifier []byte) (*services.TokenPair, error) {
	return f.loginResp, f.loginErr
}

type fakeItems struct {
	rows   []models.Item
	err    error
	gotUID string

	inserted models.Item
	updated  map[string]json.RawMessage
	deleted  []string
}

func (f *fakeItems) FetchAll(ctx context.Context, userID string) ([]models.Item, error) {
	f.gotUID = userID
	return f.rows, f.err
}

func (f *fakeItems) Insert(ctx context.Context, userID string, item models.Item) (string, error) {
	f.gotUID = userID
	f.inserted = item
	if f.err != nil {
		return "", f.err
	}
	return "srv-1", nil
}

func (f *fakeItems) Update(ctx context.Context, userID, id string, fields map[string]json.RawMessage) error {
	f.gotUID = userID
	f.updated = fields
	return f.err
}

func (f *fakeItems) Delete(ctx context.Context, userID, id string) error {
	f.gotUID = userID
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeItems) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	f.gotUID = userID
	f.deleted = append(f.deleted, ids...)
	return int64(len(ids)), f.err
}

type fakeProfiles struct {
	p   models.Profile
	err error
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := f.p
	p.UserID = userID
	return &p, nil
}

func (f *fakeProfiles) Update(ctx context.Context, userID string, appLock, biometric *bool) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if appLock != nil {
		f.p.AppLockEnabled = *appLock
	}
	if biometric != nil {
		f.p.BiometricRegistered = *biometric
	}
	return f.Get(ctx, userID)
}

const testSecret = "k"

func nopLogger() logging.Logger { return logging.NewDiscard() }

func newTestServer(u *fakeUsers, i *fakeItems, p *fakeProfiles) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", nopLogger(), u, i, p, testSecret)
}

func asUser(userID string) context.Context {
	return context.WithValue(context.Background(), UserIDKey, userID)
}
