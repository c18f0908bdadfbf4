package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/ambucheck/pkg/models"
)

const userColumns = `id, username, password, role, name`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Name); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *Repo) ReplaceUsers(ctx context.Context, users []models.User) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	for _, u := range users {
		if _, err := r.conn.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?)`, u.ID, u.Username, u.PasswordHash, u.Role, u.Name); err != nil {
			return fmt.Errorf("insert user %s: %w", u.Username, err)
		}
	}
	return r.resyncSequence(ctx, "users")
}

func (r *Repo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *Repo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}
	return r.conn.InsertID(ctx, `INSERT INTO users (username, password, role, name) VALUES (?, ?, ?, ?)`, u.Username, u.PasswordHash, u.Role, u.Name)
}
