package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garnizeh/ambucheck/pkg/models"
)

func scanEquipmentCheck(row interface{ Scan(...any) error }) (*models.EquipmentCheck, error) {
	var (
		c         models.EquipmentCheck
		data      []byte
		createdAt string
		createdBy sql.NullInt64
	)
	if err := row.Scan(&c.ID, &data, &createdAt, &createdBy); err != nil {
		return nil, err
	}
	var payload models.Fields
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode equipment check %d: %w", c.ID, err)
	}
	c.SetPayload(payload)
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("equipment check %d created_at: %w", c.ID, err)
	}
	c.CreatedAt = t
	c.CreatedBy = createdBy.Int64
	return &c, nil
}

func (r *Repo) CreateEquipmentCheck(ctx context.Context, c *models.EquipmentCheck) (*models.EquipmentCheck, error) {
	if c == nil {
		return nil, fmt.Errorf("equipment check is nil")
	}
	out := *c
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(out.Payload())
	if err != nil {
		return nil, fmt.Errorf("encode equipment check: %w", err)
	}

	id, err := r.conn.InsertID(ctx, `INSERT INTO equipment_checks (data, created_at, created_by) VALUES (?, ?, ?)`, string(data), formatTime(out.CreatedAt), out.CreatedBy)
	if err != nil {
		return nil, err
	}
	out.ID = id
	return &out, nil
}

func (r *Repo) ListEquipmentChecks(ctx context.Context) ([]models.EquipmentCheck, error) {
	rows, err := r.conn.Query(ctx, `SELECT id, data, created_at, created_by FROM equipment_checks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.EquipmentCheck{}
	for rows.Next() {
		c, err := scanEquipmentCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repo) GetEquipmentCheck(ctx context.Context, id int64) (*models.EquipmentCheck, error) {
	c, err := scanEquipmentCheck(r.conn.QueryRow(ctx, `SELECT id, data, created_at, created_by FROM equipment_checks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *Repo) DeleteEquipmentCheck(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM equipment_checks WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
