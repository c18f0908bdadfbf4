// Package equipment handles vehicle daily inspection (VDI) records.
package equipment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/ambucheck/internal/uploads"
	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

var (
	ErrInvalidData   = errors.New("equipment check data must be a JSON object")
	ErrPinRequired   = errors.New("Crew Member PIN Number 1 is required")
	ErrPhotosMissing = errors.New("Please upload all required photos")
)

// Draft is the client-side state of a check before it is sent.
type Draft struct {
	Pin      string          `json:"pin"`
	Pin2     string          `json:"pin2,omitempty"`
	Uploaded map[string]bool `json:"uploaded"`
}

// Missing lists the photo slots without an upload acknowledgment.
func (d Draft) Missing() []string {
	var out []string
	for _, slot := range models.PhotoSlots {
		if !d.Uploaded[slot] {
			out = append(out, slot)
		}
	}
	return out
}

// Ready fails unless the primary PIN is set and every photo slot has been
// uploaded.
func (d Draft) Ready() error {
	if strings.TrimSpace(d.Pin) == "" {
		return ErrPinRequired
	}
	if missing := d.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrPhotosMissing, strings.Join(missing, ", "))
	}
	return nil
}

// Photo is one uploaded image part.
type Photo struct {
	Filename string
	Body     io.Reader
}

type Service struct {
	repo    repository.EquipmentCheckRepo
	uploads *uploads.Store
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(repo repository.EquipmentCheckRepo, up *uploads.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{repo: repo, uploads: up, logger: logger, now: time.Now}
}

// Create stores a check from the JSON data part (empty means {}) and any
// photos keyed by slot. Parts for unknown slots are ignored.
func (s *Service) Create(ctx context.Context, data string, photos map[string]Photo, userID int64) (*models.EquipmentCheck, error) {
	fields := models.NewFields()
	if strings.TrimSpace(data) != "" {
		if err := fields.UnmarshalJSON([]byte(data)); err != nil {
			return nil, ErrInvalidData
		}
	}

	stored := map[string]string{}
	for _, slot := range models.PhotoSlots {
		p, ok := photos[slot]
		if !ok || p.Body == nil {
			continue
		}
		res, err := s.uploads.Save(ctx, slot, p.Filename, p.Body)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", slot, err)
		}
		stored[slot] = res.Path
	}

	check := &models.EquipmentCheck{
		CreatedAt: s.now().UTC(),
		CreatedBy: userID,
	}
	check.SetPayload(fields)
	check.Photos = stored

	out, err := s.repo.CreateEquipmentCheck(ctx, check)
	if err != nil {
		return nil, fmt.Errorf("save equipment check: %w", err)
	}
	s.logger.Info("saved equipment check", slog.Int64("id", out.ID), slog.Int64("user", userID), slog.Int("photos", len(stored)))
	return out, nil
}

// List returns the checks matching q (case-insensitive, on the identifier
// and staff name).
func (s *Service) List(ctx context.Context, q string) ([]models.EquipmentCheck, error) {
	all, err := s.repo.ListEquipmentChecks(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return all, nil
	}
	out := []models.EquipmentCheck{}
	for _, c := range all {
		if strings.Contains(strings.ToLower(Identifier(c)), q) ||
			strings.Contains(strings.ToLower(c.Data.String("staffName")), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.EquipmentCheck, error) {
	return s.repo.GetEquipmentCheck(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.DeleteEquipmentCheck(ctx, id)
}

// Identifier is the first non-empty of call sign, registration and staff name.
func Identifier(c models.EquipmentCheck) string {
	for _, k := range []string{"vehicleCallsign", "registration", "staffName"} {
		if v := c.Data.String(k); v != "" {
			return v
		}
	}
	return ""
}
