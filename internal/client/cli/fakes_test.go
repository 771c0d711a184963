package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mymind/internal/client/client"
	"github.com/dmitrijs2005/mymind/internal/client/config"
	"github.com/dmitrijs2005/mymind/internal/client/models"
	"github.com/dmitrijs2005/mymind/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mymind/internal/client/services"
	"github.com/dmitrijs2005/mymind/internal/client/store"
	"github.com/dmitrijs2005/mymind/internal/cryptox"
	"github.com/dmitrijs2005/mymind/internal/logging"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// fakeClient is an in-memory remote store.
type fakeClient struct {
	client.Client

	mu sync.Mutex

	items     []models.Item
	fetchErr  error
	insertErr error
	seq       int

	updates    []string
	deletes    []string
	deleteMany [][]string

	loginErr error
	settings models.Settings
	pingErr  error
	pings    int
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

func (f *fakeClient) Register(ctx context.Context, username string, salt, verifier []byte) error {
	return nil
}

func (f *fakeClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	return bytes.Repeat([]byte{7}, cryptox.SaltSize), nil
}

func (f *fakeClient) Login(ctx context.Context, username string, verifier []byte) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "user-1", nil
}

func (f *fakeClient) Logout() {}

func (f *fakeClient) GetProfile(ctx context.Context, owner string) (models.Settings, error) {
	return f.settings, nil
}

func (f *fakeClient) UpdateProfile(ctx context.Context, owner string, patch models.SettingsPatch) (models.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = patch.ApplyTo(f.settings)
	return f.settings, nil
}

func (f *fakeClient) FetchAll(ctx context.Context, owner string) ([]models.Item, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]models.Item, len(f.items))
	for i, it := range f.items {
		out[i] = it.Clone()
	}
	return out, nil
}

func (f *fakeClient) Insert(ctx context.Context, item models.Item) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.seq++
	return fmt.Sprintf("srv-%04d", f.seq), nil
}

func (f *fakeClient) Update(ctx context.Context, owner, id string, patch models.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	return nil
}

func (f *fakeClient) Delete(ctx context.Context, owner, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeClient) DeleteMany(ctx context.Context, owner string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteMany = append(f.deleteMany, ids)
	return nil
}

// fakeChallenge returns a fixed outcome and counts attempts.
type fakeChallenge struct {
	outcome services.ChallengeOutcome
	calls   int
}

func (c *fakeChallenge) Attempt(ctx context.Context) services.ChallengeOutcome {
	c.calls++
	return c.outcome
}

type testApp struct {
	*App
	fc        *fakeClient
	challenge *fakeChallenge
	buf       *bytes.Buffer
}

// newTestApp builds an App over real services, an in-memory database and
// a fake remote. Remote writes run inline.
func newTestApp(t *testing.T, fc *fakeClient) *testApp {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := logging.NewDiscard()
	auth := services.NewAuthService(fc, metadata.NewSQLiteRepository(db))
	now := func() time.Time { return t0 }
	items := services.NewItemService(fc, store.New(), auth, nil, services.InlineDispatcher{}, logger,
		services.WithClock(now))

	out := &bytes.Buffer{}
	ch := &fakeChallenge{outcome: services.ChallengeSucceeded}
	app := &App{
		config:    &config.Config{OnlineCheckInterval: time.Second},
		logger:    logger,
		auth:      auth,
		items:     items,
		gate:      services.NewLockGate(auth, services.NewSessionMarker(), logger),
		challenge: ch,
		reader:    bufio.NewReader(strings.NewReader("")),
		out:       out,
		now:       now,
	}
	return &testApp{App: app, fc: fc, challenge: ch, buf: out}
}

// stubInputs makes every prompt answer with username and password.
func stubInputs(t *testing.T, username string, password string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return username, nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func (ta *testApp) login(t *testing.T) {
	t.Helper()
	stubInputs(t, "alice", "secret")
	require.NoError(t, ta.Login(context.Background()))
	ta.buf.Reset()
}

func item(id, title, category string, created time.Time) models.Item {
	return models.Item{
		ID:        id,
		Owner:     "user-1",
		URL:       "https://example.com/" + id,
		Title:     title,
		Platform:  models.PlatformOther,
		Category:  category,
		Tags:      []string{},
		CreatedAt: created,
	}
}
