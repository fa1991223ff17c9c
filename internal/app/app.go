// Package app wires configuration, the catalog cache and the progress store
// together for the command-line front end.
package app

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/abhisek/a2companion/internal/catalog"
	"github.com/abhisek/a2companion/internal/config"
	"github.com/abhisek/a2companion/internal/progress"
	"github.com/abhisek/a2companion/internal/store"
)

// App holds the long-lived services of one process.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Catalog  *catalog.Cache
	Progress *progress.Store

	db *store.Store
}

// Options overrides pieces New would otherwise build from Config.
type Options struct {
	// Fetcher replaces the fetcher derived from Config.Content.
	Fetcher catalog.Fetcher
}

// New opens the progress database and builds the catalog cache.
// The caller must Close the returned App.
func New(cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("opened progress database", zap.String("path", dbPath))

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = newFetcher(cfg.Content)
	}
	loader := catalog.NewLoader(fetcher,
		catalog.WithLogger(logger.Named("loader")),
		catalog.WithIndexPath(cfg.Content.IndexPath),
		catalog.WithConcurrency(cfg.Content.Concurrency),
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Catalog:  catalog.NewCache(loader, logger.Named("cache")),
		Progress: progress.New(db.KVRepo(), progress.WithLogger(logger.Named("progress"))),
		db:       db,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.db.Close()
}

func newFetcher(c config.ContentConfig) catalog.Fetcher {
	if c.BaseURL != "" {
		return catalog.NewHTTPFetcher(c.BaseURL, catalog.WithTimeout(c.Timeout))
	}
	return catalog.NewFSFetcher(os.DirFS(c.Root))
}

// resolveDBPath returns the configured path, or the default XDG location.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
