package daemon

import (
	"context"

	"github.com/mtsalles/wastore/internal/bus"
	"github.com/mtsalles/wastore/internal/config"
	"github.com/mtsalles/wastore/internal/creds"
	"github.com/mtsalles/wastore/internal/lock"
	"github.com/mtsalles/wastore/internal/logging"
	"github.com/mtsalles/wastore/internal/query"
	"github.com/mtsalles/wastore/internal/session"
	"github.com/mtsalles/wastore/internal/store"
	intsync "github.com/mtsalles/wastore/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
}

// Module returns the fx module for the daemon, composing all providers and
// lifecycle hooks. The protocol engine is an external collaborator: it
// publishes its event stream on the bus and talks to the credential store
// directly, so neither end of that contract lives here.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideCredentialStore,
			provideDiagnostics,
			provideEngine,
			provideFacade,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	level := ""
	if cfg, err := config.Load(session.ConfigPath()); err == nil {
		level = cfg.LogLevel
	}
	return logging.New(session.LogPath(p.SessionName), p.SessionName, level)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.DBPath(p.SessionName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideCredentialStore(p Params, db *store.DB, logger *zap.Logger) *creds.Store {
	cs := creds.NewStore(p.SessionName, db, logger)
	cs.RegisterDecoder(creds.CategoryAppStateSyncKey, creds.DecodeAppStateSyncKey)
	return cs
}

func provideDiagnostics(p Params, db *store.DB, logger *zap.Logger) *intsync.Diagnostics {
	return intsync.NewDiagnostics(p.SessionName, db, logger)
}

func provideEngine(p Params, db *store.DB, b *bus.Bus, diag *intsync.Diagnostics, logger *zap.Logger) *intsync.Engine {
	return intsync.NewEngine(p.SessionName, db, b, diag, logger)
}

func provideFacade(p Params, db *store.DB, logger *zap.Logger) *query.Facade {
	return query.New(p.SessionName, db, logger)
}

func registerLifecycle(lc fx.Lifecycle, engine *intsync.Engine, cs *creds.Store, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Make sure the session has credentials before the protocol
			// engine asks for them.
			if _, err := cs.LoadCreds(ctx); err != nil {
				return err
			}

			// Start consuming the protocol event stream.
			engine.Start(context.Background())
			logger.Info("ingest engine started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			engine.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
