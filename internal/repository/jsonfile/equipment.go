package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/garnizeh/ambucheck/pkg/models"
)

func (s *Store) checks() ([]models.EquipmentCheck, error) {
	out := []models.EquipmentCheck{}
	if err := s.load(checksFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateEquipmentCheck(ctx context.Context, c *models.EquipmentCheck) (*models.EquipmentCheck, error) {
	if c == nil {
		return nil, fmt.Errorf("equipment check is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.checks()
	if err != nil {
		return nil, err
	}
	out := *c
	out.ID = nextID(all, func(x models.EquipmentCheck) int64 { return x.ID })
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	if err := s.save(checksFile, append(all, out)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) ListEquipmentChecks(ctx context.Context) ([]models.EquipmentCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checks()
}

func (s *Store) GetEquipmentCheck(ctx context.Context, id int64) (*models.EquipmentCheck, error) {
	all, err := s.ListEquipmentChecks(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) DeleteEquipmentCheck(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.checks()
	if err != nil {
		return false, err
	}
	kept := make([]models.EquipmentCheck, 0, len(all))
	for _, c := range all {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(all) {
		return false, nil
	}
	return true, s.save(checksFile, kept)
}
