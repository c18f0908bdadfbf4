package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/garnizeh/ambucheck/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Lookups of a single row return nil, nil when the row does not exist.
// Mutations addressing a row by id report whether it existed.

// ErrInvalidFormID is returned for form ids that cannot be used as a storage key.
var ErrInvalidFormID = errors.New("invalid form id")

type UserRepo interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	// ReplaceUsers overwrites the whole table, keeping the given ids.
	ReplaceUsers(ctx context.Context, users []models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) (int64, error)
}

type RunsheetRepo interface {
	ListRunsheets(ctx context.Context) ([]models.Runsheet, error)
	GetRunsheet(ctx context.Context, id int64) (*models.Runsheet, error)
	ReplaceRunsheets(ctx context.Context, runsheets []models.Runsheet) error
}

type SubmissionRepo interface {
	CreateSubmission(ctx context.Context, s *models.Submission) (*models.Submission, error)
	ListSubmissions(ctx context.Context, formID string) ([]models.Submission, error)
	GetSubmission(ctx context.Context, formID string, id int64) (*models.Submission, error)
}

type EquipmentCheckRepo interface {
	CreateEquipmentCheck(ctx context.Context, c *models.EquipmentCheck) (*models.EquipmentCheck, error)
	ListEquipmentChecks(ctx context.Context) ([]models.EquipmentCheck, error)
	GetEquipmentCheck(ctx context.Context, id int64) (*models.EquipmentCheck, error)
	DeleteEquipmentCheck(ctx context.Context, id int64) (bool, error)
}

// OverrideRepo stores admin replacements of built-in form schemas as raw JSON.
type OverrideRepo interface {
	GetOverride(ctx context.Context, formID string) (json.RawMessage, error)
	ListOverrides(ctx context.Context) (map[string]json.RawMessage, error)
	SetOverride(ctx context.Context, formID string, config json.RawMessage) error
}

type PractitionerRepo interface {
	ListPractitioners(ctx context.Context) ([]models.Practitioner, error)
	CreatePractitioner(ctx context.Context, p *models.Practitioner) (*models.Practitioner, error)
	UpdatePractitioner(ctx context.Context, id int64, patch models.PractitionerPatch) (*models.Practitioner, error)
	DeletePractitioner(ctx context.Context, id int64) (bool, error)
}

type VehicleRepo interface {
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	CreateVehicle(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id int64, patch models.VehiclePatch) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id int64) (bool, error)
}

// Store is a complete persistence backend.
type Store interface {
	UserRepo
	RunsheetRepo
	SubmissionRepo
	EquipmentCheckRepo
	OverrideRepo
	PractitionerRepo
	VehicleRepo
	Close() error
}

// ValidFormID reports whether id is usable as a storage key: letters,
// digits, '-' and '_' only.
func ValidFormID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
