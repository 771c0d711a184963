// Package server wires the backend: Postgres, migrations, services, the
// gRPC API and the metrics endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/mymind/internal/logging"
	"github.com/dmitrijs2005/mymind/internal/server/config"
	gs "github.com/dmitrijs2005/mymind/internal/server/grpc"
	"github.com/dmitrijs2005/mymind/internal/server/metrics"
	"github.com/dmitrijs2005/mymind/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mymind/internal/server/services"
	"github.com/dmitrijs2005/mymind/internal/server/thumbs"
)

// seams for tests
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepoManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	grpc    *gs.GRPCServer
	metrics *metrics.Metrics
}

// NewApp connects to the database, applies migrations and builds the
// services. The caller owns the returned App and must Run it.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	m := metrics.New()
	us := services.NewUserService(db, rm, cfg)
	is := services.NewItemService(db, rm, thumbs.NewS3Presigner(cfg), logger)
	ps := services.NewProfileService(db, rm)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: m,
		grpc:    gs.NewGRPCServer(cfg.EndpointAddrGRPC, logger, us, is, ps, cfg.SecretKey, m.UnaryInterceptor),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a termination signal arrives or one
// of the listeners fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.grpc.Run(ctx); err != nil {
			app.logger.Error(ctx, "gRPC server failed", "error", err)
			cancelFunc()
		}
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.metrics.Serve(ctx, app.config.MetricsAddr, app.logger); err != nil {
				app.logger.Error(ctx, "metrics server failed", "error", err)
				cancelFunc()
			}
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
