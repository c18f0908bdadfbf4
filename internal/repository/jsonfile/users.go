package jsonfile

import (
	"context"
	"fmt"

	"github.com/garnizeh/ambucheck/pkg/models"
)

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users()
}

func (s *Store) users() ([]models.User, error) {
	out := []models.User{}
	if err := s.load(usersFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ReplaceUsers(ctx context.Context, users []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if users == nil {
		users = []models.User{}
	}
	return s.save(usersFile, users)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.ID == id })
}

func (s *Store) findUser(match func(models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.users()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users()
	if err != nil {
		return 0, err
	}
	nu := *u
	nu.ID = nextID(users, func(x models.User) int64 { return x.ID })
	if err := s.save(usersFile, append(users, nu)); err != nil {
		return 0, err
	}
	return nu.ID, nil
}
