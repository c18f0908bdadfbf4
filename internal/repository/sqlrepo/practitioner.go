package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/ambucheck/pkg/models"
)

const practitionerColumns = `id, name, pin, role, active`

func scanPractitioner(row interface{ Scan(...any) error }) (*models.Practitioner, error) {
	var p models.Practitioner
	if err := row.Scan(&p.ID, &p.Name, &p.Pin, &p.Role, &p.Active); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListPractitioners(ctx context.Context) ([]models.Practitioner, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+practitionerColumns+` FROM practitioners ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Practitioner{}
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) CreatePractitioner(ctx context.Context, p *models.Practitioner) (*models.Practitioner, error) {
	if p == nil {
		return nil, fmt.Errorf("practitioner is nil")
	}
	id, err := r.conn.InsertID(ctx, `INSERT INTO practitioners (name, pin, role, active) VALUES (?, ?, ?, ?)`, p.Name, p.Pin, p.Role, p.Active)
	if err != nil {
		return nil, err
	}
	out := *p
	out.ID = id
	return &out, nil
}

// UpdatePractitioner applies a partial update; nil patch fields keep the
// stored value.
func (r *Repo) UpdatePractitioner(ctx context.Context, id int64, patch models.PractitionerPatch) (*models.Practitioner, error) {
	res, err := r.conn.Exec(ctx, `UPDATE practitioners SET
		name = COALESCE(?, name),
		pin = COALESCE(?, pin),
		role = COALESCE(?, role),
		active = COALESCE(?, active)
		WHERE id = ?`,
		nullable(patch.Name), nullable(patch.Pin), nullable(patch.Role), nullable(patch.Active), id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return nil, err
	}

	p, err := scanPractitioner(r.conn.QueryRow(ctx, `SELECT `+practitionerColumns+` FROM practitioners WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *Repo) DeletePractitioner(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM practitioners WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// nullable turns a nil pointer into a SQL NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
