package jsonfile

import (
	"context"

	"github.com/garnizeh/ambucheck/pkg/models"
)

func (s *Store) ListRunsheets(ctx context.Context) ([]models.Runsheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Runsheet{}
	if err := s.load(runsheetsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetRunsheet(ctx context.Context, id int64) (*models.Runsheet, error) {
	all, err := s.ListRunsheets(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range all {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *Store) ReplaceRunsheets(ctx context.Context, runsheets []models.Runsheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runsheets == nil {
		runsheets = []models.Runsheet{}
	}
	return s.save(runsheetsFile, runsheets)
}
