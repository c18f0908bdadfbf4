package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/ambucheck/pkg/models"
)

const vehicleColumns = `id, registration, callsign, description`

func scanVehicle(row interface{ Scan(...any) error }) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := row.Scan(&v.ID, &v.Registration, &v.Callsign, &v.Description); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repo) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *Repo) CreateVehicle(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error) {
	if v == nil {
		return nil, fmt.Errorf("vehicle is nil")
	}
	id, err := r.conn.InsertID(ctx, `INSERT INTO vehicles (registration, callsign, description) VALUES (?, ?, ?)`, v.Registration, v.Callsign, v.Description)
	if err != nil {
		return nil, err
	}
	out := *v
	out.ID = id
	return &out, nil
}

func (r *Repo) UpdateVehicle(ctx context.Context, id int64, patch models.VehiclePatch) (*models.Vehicle, error) {
	res, err := r.conn.Exec(ctx, `UPDATE vehicles SET
		registration = COALESCE(?, registration),
		callsign = COALESCE(?, callsign),
		description = COALESCE(?, description)
		WHERE id = ?`,
		nullable(patch.Registration), nullable(patch.Callsign), nullable(patch.Description), id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return nil, err
	}

	v, err := scanVehicle(r.conn.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func (r *Repo) DeleteVehicle(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
