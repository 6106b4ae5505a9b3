package app

import (
	"context"
	"fmt"

	"github.com/guttosm/profitpulse/config"
	"github.com/guttosm/profitpulse/internal/logger"
	"github.com/guttosm/profitpulse/internal/storage"
)

// openStore builds the result store selected by cfg.Results.Backend and
// returns a cleanup that releases it.
func openStore(ctx context.Context, cfg config.Config) (storage.ResultStore, func(), error) {
	log := logger.With("app")

	switch cfg.Results.Backend {
	case config.BackendFile, "":
		s, err := storage.NewFileStore(cfg.Results.File)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("backend", config.BackendFile).Str("path", s.Path()).Msg("result store ready")
		return s, func() {}, nil

	case config.BackendSQLite:
		s, err := storage.OpenSQLite(ctx, cfg.Results.SQLitePath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize sqlite: %w", err)
		}
		log.Info().Str("backend", config.BackendSQLite).Str("path", cfg.Results.SQLitePath).Msg("result store ready")
		return s, func() { _ = s.Close() }, nil

	case config.BackendPostgres:
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		if err := postgresMigrator(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Str("backend", config.BackendPostgres).Str("host", cfg.Postgres.Host).Msg("result store ready")
		return storage.NewPostgresStore(db), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown results backend %q", cfg.Results.Backend)
	}
}
