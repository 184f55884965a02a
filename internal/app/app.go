package app

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/finder/internal/catalog"
	"github.com/five82/finder/internal/config"
	"github.com/five82/finder/internal/favorites"
	"github.com/five82/finder/internal/kv"
	"github.com/five82/finder/internal/logging"
	"github.com/five82/finder/internal/prefs"
	"github.com/five82/finder/internal/profile"
	"github.com/five82/finder/internal/session"
	"github.com/five82/finder/internal/state"
	"github.com/five82/finder/internal/ui"
)

// Options configure the Finder application.
type Options struct {
	ConfigPath string
}

// Services holds every long-lived dependency. The CLI subcommands use it
// without starting the TUI.
type Services struct {
	Config    config.Config
	Logger    *zap.Logger
	Store     *kv.SQLite
	Session   *session.Store
	Verifier  session.Verifier
	Favorites *favorites.Store
	Theme     *prefs.Store
	Avatar    *profile.AvatarStore
	Client    *catalog.Client
}

// Open loads configuration and builds the services. Stores are not yet
// hydrated; call Hydrate.
func Open(ctx context.Context, configPath string) (*Services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load finder config: %w", err)
	}

	logger, err := logging.New(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := kv.OpenSQLite(ctx, cfg.DatabasePath())
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open data store: %w", err)
	}

	verifier, err := session.NewStaticVerifier(cfg.LoginEmail, cfg.LoginPassword)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init credentials: %w", err)
	}

	client, err := catalog.NewClient(cfg.APIBase, cfg.RequestTimeout, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init catalog client: %w", err)
	}

	logger.Info("finder starting",
		zap.String("api_base", cfg.APIBase),
		zap.String("category", cfg.Category),
		zap.String("database", cfg.DatabasePath()),
	)

	return &Services{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Session:   session.NewStore(store, logger),
		Verifier:  verifier,
		Favorites: favorites.NewStore(store, logger),
		Theme:     prefs.NewStore(store, logger),
		Avatar:    profile.NewAvatarStore(store, logger),
		Client:    client,
	}, nil
}

// Hydrate initializes all stores in parallel. Store failures are logged by
// the stores themselves and never abort startup.
func (s *Services) Hydrate(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { s.Session.Initialize(gctx); return nil })
	g.Go(func() error { s.Favorites.Initialize(gctx); return nil })
	g.Go(func() error { s.Theme.Initialize(gctx); return nil })
	g.Go(func() error { s.Avatar.Initialize(gctx); return nil })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("hydrate stores: %w", err)
	}
	return ctx.Err()
}

// Close releases the data store and flushes the logger.
func (s *Services) Close() error {
	err := s.Store.Close()
	if syncErr := s.Logger.Sync(); syncErr != nil && !isIgnorableSyncError(syncErr) {
		err = errors.Join(err, syncErr)
	}
	return err
}

// Run boots the Finder TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	svc, err := Open(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	if err := svc.Hydrate(ctx); err != nil {
		return err
	}

	cat := state.NewCatalog(svc.Client, svc.Favorites, svc.Config.Category, svc.Logger)
	defer cat.Close()

	StartRetrier(ctx, cat, svc.Config.AutoRetry, svc.Logger.Named("retrier"))

	return ui.Run(ui.Options{
		Context:   ctx,
		Logger:    svc.Logger,
		Session:   svc.Session,
		Verifier:  svc.Verifier,
		Favorites: svc.Favorites,
		Theme:     svc.Theme,
		Avatar:    svc.Avatar,
		Catalog:   cat,
		Fetcher:   svc.Client,
	})
}

// Sync on a terminal reports EINVAL or ENOTTY on some platforms.
func isIgnorableSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}
