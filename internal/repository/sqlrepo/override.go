package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

func (r *Repo) GetOverride(ctx context.Context, formID string) (json.RawMessage, error) {
	var config []byte
	err := r.conn.QueryRow(ctx, `SELECT config FROM form_config_overrides WHERE form_id = ?`, formID).Scan(&config)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(config), nil
}

func (r *Repo) ListOverrides(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := r.conn.Query(ctx, `SELECT form_id, config FROM form_config_overrides`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]json.RawMessage{}
	for rows.Next() {
		var (
			id     string
			config []byte
		)
		if err := rows.Scan(&id, &config); err != nil {
			return nil, err
		}
		out[id] = json.RawMessage(config)
	}
	return out, rows.Err()
}

func (r *Repo) SetOverride(ctx context.Context, formID string, config json.RawMessage) error {
	_, err := r.conn.Exec(ctx, `INSERT INTO form_config_overrides (form_id, config) VALUES (?, ?)
		ON CONFLICT (form_id) DO UPDATE SET config = excluded.config`, formID, string(config))
	return err
}
