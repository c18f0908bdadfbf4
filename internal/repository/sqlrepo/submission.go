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

const submissionColumns = `id, form_id, answers, form_snapshot, created_at, created_by`

func scanSubmission(row interface{ Scan(...any) error }) (*models.Submission, error) {
	var (
		s         models.Submission
		answers   []byte
		snapshot  []byte
		createdAt string
		createdBy sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.FormID, &answers, &snapshot, &createdAt, &createdBy); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &s.Values); err != nil {
		return nil, fmt.Errorf("decode answers of submission %d: %w", s.ID, err)
	}
	if len(snapshot) > 0 {
		s.FormSnapshot = json.RawMessage(snapshot)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("submission %d created_at: %w", s.ID, err)
	}
	s.CreatedAt = t
	s.CreatedBy = createdBy.Int64
	return &s, nil
}

func (r *Repo) CreateSubmission(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	if s == nil {
		return nil, fmt.Errorf("submission is nil")
	}

	answers, err := json.Marshal(s.Values)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	var snapshot any
	if s.HasSnapshot() {
		snapshot = string(s.FormSnapshot)
	}
	out := *s
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}

	id, err := r.conn.InsertID(ctx, `INSERT INTO form_submissions (form_id, answers, form_snapshot, created_at, created_by) VALUES (?, ?, ?, ?, ?)`,
		out.FormID, string(answers), snapshot, formatTime(out.CreatedAt), out.CreatedBy)
	if err != nil {
		return nil, err
	}
	out.ID = id
	return &out, nil
}

func (r *Repo) ListSubmissions(ctx context.Context, formID string) ([]models.Submission, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+submissionColumns+` FROM form_submissions WHERE form_id = ? ORDER BY id`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *Repo) GetSubmission(ctx context.Context, formID string, id int64) (*models.Submission, error) {
	s, err := scanSubmission(r.conn.QueryRow(ctx, `SELECT `+submissionColumns+` FROM form_submissions WHERE form_id = ? AND id = ?`, formID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}
