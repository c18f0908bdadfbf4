package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

func (s *Store) submissions(formID string) ([]models.Submission, error) {
	if !repository.ValidFormID(formID) {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidFormID, formID)
	}
	out := []models.Submission{}
	if err := s.load(submissionsFile(formID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateSubmission(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	if sub == nil {
		return nil, fmt.Errorf("submission is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.submissions(sub.FormID)
	if err != nil {
		return nil, err
	}
	out := *sub
	out.ID = nextID(all, func(x models.Submission) int64 { return x.ID })
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	if !out.HasSnapshot() {
		out.FormSnapshot = nil
	}
	if err := s.save(submissionsFile(sub.FormID), append(all, out)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) ListSubmissions(ctx context.Context, formID string) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions(formID)
}

func (s *Store) GetSubmission(ctx context.Context, formID string, id int64) (*models.Submission, error) {
	all, err := s.ListSubmissions(ctx, formID)
	if err != nil {
		return nil, err
	}
	for _, sub := range all {
		if sub.ID == id {
			return &sub, nil
		}
	}
	return nil, nil
}
