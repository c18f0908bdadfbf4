package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	ambudb "github.com/garnizeh/ambucheck/db"
	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

const (
	// legacyAdminPassword is rotated to the configured password on start-up.
	legacyAdminPassword = "admin123"

	// user1Hash is the bcrypt hash of the test account password "1user".
	user1Hash = "$2a$10$CeVEXdq1SU6MT7CaNwrh9uBM2HfSERgJ7MalRtCz1gB0K8DtZBnFG"
)

// EnsureUsers seeds admin and user1 on an empty users table. On an existing
// table it rotates an admin still using the legacy password and re-adds
// user1 if it was removed.
func EnsureUsers(ctx context.Context, users repository.UserRepo, adminPassword string, logger *slog.Logger) error {
	all, err := users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if len(all) == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		seed := []models.User{
			{ID: 1, Username: "admin", PasswordHash: string(hash), Role: models.RoleAdmin, Name: "Admin User"},
			{ID: 2, Username: "user1", PasswordHash: user1Hash, Role: models.RoleUser, Name: "Standard User"},
		}
		if err := users.ReplaceUsers(ctx, seed); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		logger.Info("seeded default users", slog.Int("count", len(seed)))
		return nil
	}

	changed := false
	for i := range all {
		if all[i].Username != "admin" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(all[i].PasswordHash), []byte(legacyAdminPassword)) == nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			all[i].PasswordHash = string(hash)
			changed = true
			logger.Info("rotated legacy admin password")
		}
		break
	}

	hasUser1 := false
	for _, u := range all {
		if u.Username == "user1" {
			hasUser1 = true
			break
		}
	}
	if !hasUser1 {
		var max int64
		for _, u := range all {
			if u.ID > max {
				max = u.ID
			}
		}
		all = append(all, models.User{ID: max + 1, Username: "user1", PasswordHash: user1Hash, Role: models.RoleUser, Name: "Standard User"})
		changed = true
		logger.Info("restored user1 test account")
	}

	if !changed {
		return nil
	}
	if err := users.ReplaceUsers(ctx, all); err != nil {
		return fmt.Errorf("update users: %w", err)
	}
	return nil
}

// SampleRunsheets returns the bundled runsheet fixtures.
func SampleRunsheets() ([]models.Runsheet, error) {
	b, err := ambudb.SeedFiles.ReadFile("seed/runsheets.json")
	if err != nil {
		return nil, err
	}
	var out []models.Runsheet
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode sample runsheets: %w", err)
	}
	return out, nil
}

// EnsureRunsheets loads the sample runsheets when none are stored.
func EnsureRunsheets(ctx context.Context, runsheets repository.RunsheetRepo, logger *slog.Logger) error {
	all, err := runsheets.ListRunsheets(ctx)
	if err != nil {
		return fmt.Errorf("list runsheets: %w", err)
	}
	if len(all) > 0 {
		return nil
	}

	sample, err := SampleRunsheets()
	if err != nil {
		return err
	}
	if err := runsheets.ReplaceRunsheets(ctx, sample); err != nil {
		return fmt.Errorf("seed runsheets: %w", err)
	}
	logger.Info("seeded sample runsheets", slog.Int("count", len(sample)))
	return nil
}

// Seed runs every start-up seeding step.
func Seed(ctx context.Context, store repository.Store, adminPassword string, logger *slog.Logger) error {
	if err := EnsureUsers(ctx, store, adminPassword, logger); err != nil {
		return err
	}
	return EnsureRunsheets(ctx, store, logger)
}
