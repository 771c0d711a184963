package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/mymind/internal/client/client"
	"github.com/dmitrijs2005/mymind/internal/client/config"
	"github.com/dmitrijs2005/mymind/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mymind/internal/client/repositories/pending"
	"github.com/dmitrijs2005/mymind/internal/client/services"
	"github.com/dmitrijs2005/mymind/internal/client/store"
	"github.com/dmitrijs2005/mymind/internal/client/views"
	"github.com/dmitrijs2005/mymind/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	auth      services.AuthService
	items     services.ItemService
	gate      *services.LockGate
	challenge services.UnlockChallenge
	reader    *bufio.Reader
	out       io.Writer
	now       func() time.Time

	filter   views.Filter
	userName string

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the local database, dials the server and builds the services.
// With Reconcile off the pending-write journal is not used.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewCuratorClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	meta := metadata.NewSQLiteRepository(db)
	var journal pending.Repository
	if c.Reconcile {
		journal = pending.NewSQLiteRepository(db)
	}

	auth := services.NewAuthService(apiClient, meta)
	items := services.NewItemService(apiClient, store.New(), auth, journal,
		services.NewBackgroundDispatcher(c.RemoteWriteTimeout), logger)

	a := &App{
		config: c,
		logger: logger.With("module", "cli"),
		db:     db,
		auth:   auth,
		items:  items,
		gate:   services.NewLockGate(auth, services.NewSessionMarker(), logger),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		now:    time.Now,
	}
	a.challenge = services.NewPasswordChallenge(meta, auth, func() ([]byte, error) {
		return getPassword(a.out)
	})
	return a, nil
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		a.logger.Info(ctx, fmt.Sprintf("switched to %s mode", mode))
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Run blocks in the REPL. On the way out it waits for background remote
// writes, then closes the connection and the database.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.db != nil {
			_ = a.db.Close()
		}
	}()
	defer a.auth.Close(ctx)
	defer a.items.Wait()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.auth.Owner() != ""
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.auth.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}
