package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/bus"
	"github.com/matheus3301/chatterm/internal/config"
	"github.com/matheus3301/chatterm/internal/lock"
	"github.com/matheus3301/chatterm/internal/logging"
	"github.com/matheus3301/chatterm/internal/profile"
	"github.com/matheus3301/chatterm/internal/socket"
	"github.com/matheus3301/chatterm/internal/status"
	"github.com/matheus3301/chatterm/internal/store"
	"github.com/matheus3301/chatterm/internal/tui"
	"github.com/matheus3301/chatterm/internal/tui/model"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

// Params holds the resolved profile configuration passed to the fx modules.
type Params struct {
	Profile string
	Config  *config.Config
	// LogLevel overrides Config.LogLevel when set.
	LogLevel string
	// LogStderr mirrors logs to stderr. Never set for the TUI.
	LogStderr bool
}

func (p Params) config() *config.Config {
	if p.Config == nil {
		return config.Default()
	}
	return p.Config
}

// Module returns the fx module for the interactive client: the profile
// lock, credential store, REST and real-time clients, view model and TUI.
func Module(p Params) fx.Option {
	return fx.Module("chatterm",
		common(p),
		fx.Provide(
			provideStateMachine,
			provideLock,
			provideLockedStore,
			provideSocket,
			provideViewModel,
			provideTUI,
		),
		fx.Invoke(registerLifecycle),
	)
}

// ClientModule returns the fx module for one-shot commands. It shares the
// credential store with a running TUI instead of taking the profile lock.
func ClientModule(p Params) fx.Option {
	return fx.Module("chatctl",
		common(p),
		fx.Provide(provideStore),
		fx.Invoke(registerStoreClose),
	)
}

func common(p Params) fx.Option {
	return fx.Options(
		fx.Supply(p),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx").WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		fx.Provide(
			provideLogger,
			provideBus,
			provideJar,
			provideAPI,
		),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	level := p.LogLevel
	if level == "" {
		level = p.config().LogLevel
	}
	return logging.New(logging.Options{
		Path:    profile.LogPath(p.Profile),
		Profile: p.Profile,
		Level:   level,
		Stderr:  p.LogStderr,
	})
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideLockedStore opens the store only once the lock is held.
func provideLockedStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	return provideStore(p, logger)
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.StorePath(p.Profile)
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
		logger.Info("migrations applied", zap.Uint("from", result.From), zap.Uint("version", result.Version))
	} else {
		logger.Debug("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideJar(p Params, db *store.DB, logger *zap.Logger) (*api.PersistentJar, error) {
	return api.NewPersistentJar(db, p.config().BackendURL, logger.Named("jar"))
}

func provideAPI(p Params, jar *api.PersistentJar, logger *zap.Logger) *api.Client {
	cfg := p.config()
	return api.New(api.Options{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout.Duration,
		Jar:     jar,
		Logger:  logger.Named("api"),
	})
}

func provideSocket(p Params, jar *api.PersistentJar, b *bus.Bus, logger *zap.Logger) *socket.Client {
	return socket.New(socket.Options{
		URL:     p.config().SocketURL,
		Cookies: jar.OriginCookies,
		Bus:     b,
		Logger:  logger.Named("socket"),
	})
}

func provideViewModel(p Params, backend *api.Client, sock *socket.Client, logger *zap.Logger) *model.ViewModel {
	cfg := p.config()
	return model.NewViewModel(model.Options{
		Backend:         backend,
		Socket:          sock,
		Logger:          logger,
		TypingWindow:    cfg.TypingWindow.Duration,
		RemoteTypingTTL: cfg.RemoteTypingTTL.Duration,
	})
}

func provideTUI(p Params, vm *model.ViewModel, sock *socket.Client, m *status.Machine, b *bus.Bus, db *store.DB, jar *api.PersistentJar, logger *zap.Logger) (*tui.App, error) {
	theme, err := ui.ThemeByName(p.config().Theme)
	if err != nil {
		return nil, err
	}
	return tui.NewApp(tui.Options{
		Profile: p.Profile,
		Backend: p.config().BackendURL,
		Theme:   theme,
		VM:      vm,
		Socket:  sock,
		Bus:     b,
		Status:  m,
		Prefs:   db,
		Jar:     jar,
		Logger:  logger,
	}), nil
}

func registerLifecycle(lc fx.Lifecycle, sd fx.Shutdowner, view *tui.App, vm *model.ViewModel, sock *socket.Client, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := view.Run(); err != nil {
					logger.Error("tui exited", zap.Error(err))
					_ = sd.Shutdown(fx.ExitCode(1))
					return
				}
				_ = sd.Shutdown()
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			view.Stop()
			vm.Close()
			sock.Close()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}

func registerStoreClose(lc fx.Lifecycle, db *store.DB, logger *zap.Logger) {
	lc.Append(fx.StopHook(func() {
		if err := db.Close(); err != nil {
			logger.Warn("error closing store", zap.Error(err))
		}
	}))
}
