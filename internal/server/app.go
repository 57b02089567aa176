// Package server initializes and runs the PhoenixLocker server.
// It picks the storage backend, restores state, wires the ledger engine to the
// token bank and publishers, and supervises the gRPC, metrics and snapshot
// loops until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/phoenixlocker/internal/logging"
	"github.com/dmitrijs2005/phoenixlocker/internal/metrics"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/config"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/events"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/users"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/services"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/store"
	"github.com/dmitrijs2005/phoenixlocker/internal/token"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/phoenixlocker/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	clock     clockwork.Clock
	store     store.Store
	bank      *token.Bank
	metrics   *metrics.Ledger
	ledger    *services.LedgerService
	users     *services.UserService
	snapshots *services.SnapshotService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	return newApp(ctx, c, logger, clockwork.NewRealClock())
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, clock clockwork.Clock) (*App, error) {
	app := &App{config: c, logger: logger, clock: clock, bank: token.NewBank(), metrics: metrics.NewLedger()}

	userRepo, tokenRepo, err := app.initStore(ctx)
	if err != nil {
		return nil, err
	}

	total, err := app.store.TotalLocked(ctx)
	if err != nil {
		_ = app.store.Close()
		return nil, fmt.Errorf("read total locked: %w", err)
	}
	// the dev bank starts empty; back the restored ledger with custody
	if err := app.bank.MintCustody(total); err != nil {
		_ = app.store.Close()
		return nil, err
	}
	app.metrics.SetTotalLocked(total)
	app.metrics.TrackTotal(app.store.TotalLocked)

	pub := events.Fanout{events.NewLogPublisher(logger), app.metrics}
	app.ledger = services.NewLedgerService(app.store, app.bank, clock, pub, app.metrics, logger)
	app.users = services.NewUserService(userRepo, tokenRepo, app.bank, c, logger)
	app.snapshots = services.NewSnapshotService(app.ledger, c, clock, logger)

	return app, nil
}

// initStore opens PostgreSQL when a DSN is configured and the in-memory
// ledger otherwise, optionally seeded from a stored snapshot. Asking for
// both is a configuration error.
func (app *App) initStore(ctx context.Context) (users.Repository, refreshtokens.Repository, error) {
	// PostgreSQL already holds its own state; restoring over it is not supported.
	if app.config.DatabaseDSN != "" && app.config.RestoreSnapshotKey != "" {
		return nil, nil, fmt.Errorf("restore snapshot %s: only the in-memory ledger can be restored, unset the database DSN", app.config.RestoreSnapshotKey)
	}
	if app.config.DatabaseDSN != "" {
		db, err := openDB(app.config.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db init error: %w", err)
		}
		rm := repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrations error: %w", err)
		}
		app.store = store.NewPostgresStore(db, rm, app.clock)
		app.logger.Info(ctx, "using postgres storage")
		return rm.Users(db), rm.RefreshTokens(db), nil
	}

	if key := app.config.RestoreSnapshotKey; key != "" {
		loader := services.NewSnapshotService(nil, app.config, app.clock, app.logger)
		snap, err := loader.Load(ctx, key)
		if err != nil {
			return nil, nil, fmt.Errorf("restore snapshot: %w", err)
		}
		st, err := store.NewMemoryStoreFromSnapshot(app.clock, snap)
		if err != nil {
			return nil, nil, fmt.Errorf("restore snapshot: %w", err)
		}
		app.store = st
		app.logger.Info(ctx, "restored in-memory ledger", "key", key, "accounts", len(snap.Accounts))
	} else {
		app.store = store.NewMemoryStore(app.clock)
		app.logger.Info(ctx, "using in-memory storage")
	}
	return users.NewMemoryRepository(), refreshtokens.NewMemoryRepository(), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) grpcServer() *gs.GRPCServer {
	return gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.ledger, app.users, app.config.SecretKey, gs.Options{
		Snapshots: app.snapshots,
		Balances:  app.bank,
		Operator:  app.config.OperatorAddress,
	})
}

// pruneRefreshTokens drops expired refresh tokens once an hour until ctx ends.
func (app *App) pruneRefreshTokens(ctx context.Context) {
	ticker := app.clock.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := app.users.PruneRefreshTokens(ctx); err != nil {
				app.logger.Error(ctx, "refresh token pruning failed", "error", err)
			}
		}
	}
}

// Run serves until ctx is cancelled or a signal arrives. The first failing
// component stops the others.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.grpcServer().Run(ctx)
	})

	if app.config.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.NewServer(app.config.MetricsAddr, app.metrics, app.logger).Run(ctx)
		})
	}

	if app.config.SnapshotInterval > 0 {
		g.Go(func() error {
			return app.snapshots.Run(ctx, app.config.SnapshotInterval)
		})
	}

	g.Go(func() error {
		app.pruneRefreshTokens(ctx)
		return nil
	})

	err := g.Wait()

	if cerr := app.store.Close(); cerr != nil {
		app.logger.Error(ctx, "closing store", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
