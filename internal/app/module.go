package app

import (
	"context"

	"github.com/miccroten/mtadmin/internal/backend/authn"
	"github.com/miccroten/mtadmin/internal/backend/rowstore"
	"github.com/miccroten/mtadmin/internal/bus"
	"github.com/miccroten/mtadmin/internal/config"
	"github.com/miccroten/mtadmin/internal/idle"
	"github.com/miccroten/mtadmin/internal/inbox"
	"github.com/miccroten/mtadmin/internal/lock"
	"github.com/miccroten/mtadmin/internal/logging"
	"github.com/miccroten/mtadmin/internal/profile"
	"github.com/miccroten/mtadmin/internal/session"
	"github.com/miccroten/mtadmin/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	ProfileName string
}

// Module returns the fx module for the admin console, composing all
// providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("mtadmin",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			providePhaseMachine,
			provideLock,
			provideSessionStore,
			provideRowStore,
			provideRepository,
			provideChangeFeed,
			provideVerifier,
			provideIdleTimer,
			provideSynchronizer,
			provideApp,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() (*config.Config, error) {
	return config.Load()
}

func provideLogger(p Params, cfg *config.Config) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.ProfileName), p.ProfileName, cfg.LogLevel)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func providePhaseMachine(b *bus.Bus) *session.Machine {
	return session.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(profile.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideSessionStore(p Params, logger *zap.Logger) *session.Store {
	return session.NewStore(profile.SessionPath(p.ProfileName), logger)
}

func provideRowStore(cfg *config.Config, logger *zap.Logger) (*rowstore.Store, error) {
	store, err := rowstore.Open(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("message store connected")
	return store, nil
}

func provideRepository(store *rowstore.Store) inbox.Repository {
	return store
}

func provideChangeFeed(store *rowstore.Store, b *bus.Bus, logger *zap.Logger) *rowstore.ChangeFeed {
	return rowstore.NewChangeFeed(store.Pool(), b, logger)
}

func provideVerifier(cfg *config.Config, logger *zap.Logger) *authn.Verifier {
	return authn.NewVerifier(cfg.AuthURL, cfg.AuthAPIKey, logger)
}

func provideIdleTimer() *idle.Timer {
	return idle.NewTimer()
}

func provideSynchronizer(repo inbox.Repository, b *bus.Bus, logger *zap.Logger) *inbox.Synchronizer {
	return inbox.NewSynchronizer(repo, b, logger)
}

func provideApp(
	p Params,
	cfg *config.Config,
	store *session.Store,
	machine *session.Machine,
	timer *idle.Timer,
	sync *inbox.Synchronizer,
	verifier *authn.Verifier,
	b *bus.Bus,
	logger *zap.Logger,
) *tui.App {
	return tui.NewApp(cfg, p.ProfileName, store, machine, timer, sync, verifier, b, logger)
}

func registerLifecycle(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	application *tui.App,
	feed *rowstore.ChangeFeed,
	store *rowstore.Store,
	sync *inbox.Synchronizer,
	timer *idle.Timer,
	lk *lock.Lock,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			feed.Start(context.Background())

			// The TUI owns the terminal until the user quits; its exit
			// drives application shutdown.
			go func() {
				if err := application.Run(); err != nil {
					logger.Error("terminal UI error", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()

			logger.Info("admin console started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			application.Stop()
			timer.Stop()
			sync.Deactivate()
			feed.Stop()
			store.Close()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("admin console stopped")
			return nil
		},
	})
}
