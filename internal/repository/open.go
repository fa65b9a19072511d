package repository

import (
	"database/sql"
	"fmt"

	"via-fatto-painel/common/database"
	"via-fatto-painel/internal/config"

	"go.uber.org/zap"
)

// OpenDirectory builds the directory selected by cfg.Directory.Backend.
// A Postgres backend that cannot connect is an error, unless
// cfg.Directory.FallbackMemory allows serving the memory directory instead.
// The returned close func is never nil.
func OpenDirectory(cfg *config.Config, logger *zap.Logger) (*Directory, func(), error) {
	noop := func() {}
	switch cfg.Directory.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgresDB(&cfg.Database)
		if err == nil {
			logger.Info("Postgres directory enabled", zap.String("host", cfg.Database.Host))
			return NewPostgresDirectory(db), func() { closeDB(db, logger) }, nil
		}
		if !cfg.Directory.FallbackMemory {
			return nil, noop, fmt.Errorf("postgres directory unavailable: %w", err)
		}
		logger.Warn("Postgres directory unavailable, falling back to memory", zap.Error(err))
		return openMemory(cfg, logger)
	case config.BackendRest:
		rest, err := NewRestDirectory(cfg.Rest, logger)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("REST directory enabled", zap.String("base_url", cfg.Rest.BaseURL))
		return rest.Directory(), noop, nil
	case config.BackendMemory, "":
		return openMemory(cfg, logger)
	default:
		return nil, noop, fmt.Errorf("unknown directory backend %q", cfg.Directory.Backend)
	}
}

func openMemory(cfg *config.Config, logger *zap.Logger) (*Directory, func(), error) {
	mem := NewMemoryDirectory()
	if cfg.Directory.SeedFile != "" {
		if err := LoadSeedFile(cfg.Directory.SeedFile, mem); err != nil {
			return nil, func() {}, err
		}
		logger.Info("memory directory seeded", zap.String("file", cfg.Directory.SeedFile))
	} else {
		logger.Warn("memory directory has no seed file, every hostname will miss")
	}
	return mem.Directory(), func() {}, nil
}

func closeDB(db *sql.DB, logger *zap.Logger) {
	if err := database.Close(db); err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
}
