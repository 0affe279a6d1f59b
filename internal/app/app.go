// Package app wires configuration, storage and the Gutenberg client into a
// book service shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"
	"log"

	"bookfreq/internal/book"
	"bookfreq/internal/config"
	"bookfreq/internal/platform/database"
	"bookfreq/internal/platform/gutenberg"
)

type App struct {
	Service *book.Service
	Fetcher *gutenberg.Client

	ping  func(context.Context) error
	close func()
}

// Open connects to the configured store and builds the service.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	fetcher := NewFetcher(cfg)

	switch cfg.DBDriver {
	case database.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		repo, err := book.NewSQLiteRepo(ctx, db, cfg.DBTimeout)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Printf("database connection OK driver=sqlite path=%s", cfg.SQLitePath)
		return &App{
			Service: book.NewService(repo, fetcher),
			Fetcher: fetcher,
			ping:    db.PingContext,
			close:   func() { _ = db.Close() },
		}, nil

	case database.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		log.Printf("database connection OK driver=postgres dsn=%s", database.RedactDSN(cfg.DBDSN))
		return &App{
			Service: book.NewService(book.NewPostgresRepo(pool, cfg.DBTimeout), fetcher),
			Fetcher: fetcher,
			ping:    pool.Ping,
			close:   pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// NewFetcher builds a Gutenberg client from cfg.
func NewFetcher(cfg config.Config) *gutenberg.Client {
	return gutenberg.NewClient(gutenberg.Config{
		UserAgent: cfg.GutenbergUserAgent,
		RPS:       cfg.GutenbergRPS,
		Timeout:   cfg.FetchTimeout,
		CacheTTL:  cfg.FetchCacheTTL,
	})
}

// Ping reports whether the store is reachable.
func (a *App) Ping(ctx context.Context) error {
	return a.ping(ctx)
}

func (a *App) Close() {
	a.close()
}
