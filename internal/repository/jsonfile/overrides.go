package jsonfile

import (
	"context"
	"encoding/json"
)

func (s *Store) overrides() (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	if err := s.load(overridesFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetOverride(ctx context.Context, formID string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.overrides()
	if err != nil {
		return nil, err
	}
	raw, ok := all[formID]
	if !ok {
		return nil, nil
	}
	return raw, nil
}

func (s *Store) ListOverrides(ctx context.Context) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overrides()
}

func (s *Store) SetOverride(ctx context.Context, formID string, config json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.overrides()
	if err != nil {
		return err
	}
	all[formID] = config
	return s.save(overridesFile, all)
}
