package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/garnizeh/ambucheck/pkg/models"
)

// Runsheets are stored as a JSON document next to their id.

func scanRunsheet(row interface{ Scan(...any) error }) (*models.Runsheet, error) {
	var (
		id   int64
		data []byte
	)
	if err := row.Scan(&id, &data); err != nil {
		return nil, err
	}
	var rs models.Runsheet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decode runsheet %d: %w", id, err)
	}
	rs.ID = id
	return &rs, nil
}

func (r *Repo) ListRunsheets(ctx context.Context) ([]models.Runsheet, error) {
	rows, err := r.conn.Query(ctx, `SELECT id, data FROM runsheets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Runsheet{}
	for rows.Next() {
		rs, err := scanRunsheet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rs)
	}
	return out, rows.Err()
}

func (r *Repo) GetRunsheet(ctx context.Context, id int64) (*models.Runsheet, error) {
	rs, err := scanRunsheet(r.conn.QueryRow(ctx, `SELECT id, data FROM runsheets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rs, err
}

func (r *Repo) ReplaceRunsheets(ctx context.Context, runsheets []models.Runsheet) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM runsheets`); err != nil {
		return fmt.Errorf("clear runsheets: %w", err)
	}
	for _, rs := range runsheets {
		data, err := json.Marshal(rs)
		if err != nil {
			return err
		}
		if _, err := r.conn.Exec(ctx, `INSERT INTO runsheets (id, data) VALUES (?, ?)`, rs.ID, string(data)); err != nil {
			return fmt.Errorf("insert runsheet %d: %w", rs.ID, err)
		}
	}
	return r.resyncSequence(ctx, "runsheets")
}
