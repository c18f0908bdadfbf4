package jsonfile

import (
	"context"
	"fmt"

	"github.com/garnizeh/ambucheck/pkg/models"
)

// Practitioners and vehicles.

func (s *Store) practitioners() ([]models.Practitioner, error) {
	out := []models.Practitioner{}
	if err := s.load(practitionersFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListPractitioners(ctx context.Context) ([]models.Practitioner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.practitioners()
}

func (s *Store) CreatePractitioner(ctx context.Context, p *models.Practitioner) (*models.Practitioner, error) {
	if p == nil {
		return nil, fmt.Errorf("practitioner is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.practitioners()
	if err != nil {
		return nil, err
	}
	out := *p
	out.ID = nextID(all, func(x models.Practitioner) int64 { return x.ID })
	if err := s.save(practitionersFile, append(all, out)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) UpdatePractitioner(ctx context.Context, id int64, patch models.PractitionerPatch) (*models.Practitioner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.practitioners()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		patch.ApplyTo(&all[i])
		if err := s.save(practitionersFile, all); err != nil {
			return nil, err
		}
		out := all[i]
		return &out, nil
	}
	return nil, nil
}

func (s *Store) DeletePractitioner(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.practitioners()
	if err != nil {
		return false, err
	}
	kept := make([]models.Practitioner, 0, len(all))
	for _, p := range all {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(all) {
		return false, nil
	}
	return true, s.save(practitionersFile, kept)
}

func (s *Store) vehicles() ([]models.Vehicle, error) {
	out := []models.Vehicle{}
	if err := s.load(vehiclesFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vehicles()
}

func (s *Store) CreateVehicle(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error) {
	if v == nil {
		return nil, fmt.Errorf("vehicle is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.vehicles()
	if err != nil {
		return nil, err
	}
	out := *v
	out.ID = nextID(all, func(x models.Vehicle) int64 { return x.ID })
	if err := s.save(vehiclesFile, append(all, out)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) UpdateVehicle(ctx context.Context, id int64, patch models.VehiclePatch) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.vehicles()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		patch.ApplyTo(&all[i])
		if err := s.save(vehiclesFile, all); err != nil {
			return nil, err
		}
		out := all[i]
		return &out, nil
	}
	return nil, nil
}

func (s *Store) DeleteVehicle(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.vehicles()
	if err != nil {
		return false, err
	}
	kept := make([]models.Vehicle, 0, len(all))
	for _, v := range all {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(all) {
		return false, nil
	}
	return true, s.save(vehiclesFile, kept)
}
