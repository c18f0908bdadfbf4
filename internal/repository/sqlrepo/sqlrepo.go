// Package sqlrepo implements the repository interfaces over database/sql
// for both SQLite and Postgres.
package sqlrepo

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/garnizeh/ambucheck/internal/db"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

// Repo implements repository.Store using the internal DB wrapper.
type Repo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure Repo implements the public interfaces.
var _ repository.Store = (*Repo)(nil)

func New(conn *db.DB, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Repo{conn: conn, logger: logger}
}

func (r *Repo) Close() error {
	return r.conn.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads timestamps written by formatTime or returned by the
// Postgres driver for TIMESTAMPTZ columns.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05.999999999Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Parse(time.RFC3339Nano, s)
}

// resyncSequence moves a Postgres serial past ids inserted explicitly.
func (r *Repo) resyncSequence(ctx context.Context, table string) error {
	if r.conn.Dialect() != db.Postgres {
		return nil
	}
	_, err := r.conn.Exec(ctx, `SELECT setval(pg_get_serial_sequence('`+table+`', 'id'), COALESCE((SELECT MAX(id) FROM `+table+`), 0) + 1, false)`)
	return err
}
