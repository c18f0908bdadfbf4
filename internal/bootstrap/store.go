// Package bootstrap opens the configured storage backend and seeds the
// records a fresh install needs.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	ambudb "github.com/garnizeh/ambucheck/db"
	"github.com/garnizeh/ambucheck/internal/config"
	"github.com/garnizeh/ambucheck/internal/db"
	"github.com/garnizeh/ambucheck/internal/repository/jsonfile"
	"github.com/garnizeh/ambucheck/internal/repository/sqlrepo"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

// Backend names the storage implementation picked by OpenStore.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendJSON     Backend = "json"
)

// SelectBackend applies the start-up rule: a database URL means Postgres, a
// database path means SQLite, anything else falls back to JSON files.
func SelectBackend(cfg *config.Config) Backend {
	switch {
	case cfg.DatabaseURL != "":
		return BackendPostgres
	case cfg.DatabasePath != "":
		return BackendSQLite
	default:
		return BackendJSON
	}
}

// OpenStore opens the backend and, for SQL backends, applies pending
// migrations.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, Backend, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	backend := SelectBackend(cfg)

	var (
		dialect db.Dialect
		dsn     string
	)
	switch backend {
	case BackendJSON:
		logger.Info("storage backend", slog.String("backend", string(backend)), slog.String("dir", cfg.DataDir))
		return jsonfile.New(cfg.DataDir, logger), backend, nil
	case BackendPostgres:
		dialect, dsn = db.Postgres, cfg.DatabaseURL
	case BackendSQLite:
		dialect, dsn = db.SQLite, cfg.DatabasePath
	}

	conn, err := db.New(ctx, dialect, dsn)
	if err != nil {
		return nil, backend, fmt.Errorf("open %s: %w", backend, err)
	}
	if err := db.Migrate(ctx, conn, ambudb.Migrations); err != nil {
		conn.Close()
		return nil, backend, fmt.Errorf("migrate %s: %w", backend, err)
	}

	logger.Info("storage backend", slog.String("backend", string(backend)))
	return sqlrepo.New(conn, logger), backend, nil
}
