// Package submissions accepts completed checklists and freezes the schema
// they were filled against.
package submissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/ambucheck/internal/forms"
	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

var ErrInvalidValues = errors.New("values must be a JSON object")

type Service struct {
	resolver *forms.Resolver
	repo     repository.SubmissionRepo
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(resolver *forms.Resolver, repo repository.SubmissionRepo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{resolver: resolver, repo: repo, logger: logger, now: time.Now}
}

// Submit stores values with the schema in effect right now. Required flags
// are not enforced here. The client snapshot is only used for form ids the
// server cannot resolve.
func (s *Service) Submit(ctx context.Context, formID string, values json.RawMessage, clientSnapshot json.RawMessage, userID int64) (*models.Submission, error) {
	if !repository.ValidFormID(formID) {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidFormID, formID)
	}

	var fields models.Fields
	if len(values) == 0 || fields.UnmarshalJSON(values) != nil {
		return nil, ErrInvalidValues
	}

	snapshot, err := s.snapshot(ctx, formID, clientSnapshot)
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.CreateSubmission(ctx, &models.Submission{
		FormID:       formID,
		Values:       fields,
		FormSnapshot: snapshot,
		CreatedAt:    s.now().UTC(),
		CreatedBy:    userID,
	})
	if err != nil {
		s.logger.Error("failed to save submission", slog.String("form", formID), slog.Int64("user", userID), slog.Any("err", err))
		return nil, fmt.Errorf("save submission: %w", err)
	}

	s.logger.Info("saved submission",
		slog.String("form", formID),
		slog.Int64("id", sub.ID),
		slog.Int64("user", userID),
		slog.Bool("snapshot", sub.HasSnapshot()),
	)
	return sub, nil
}

func (s *Service) snapshot(ctx context.Context, formID string, client json.RawMessage) (json.RawMessage, error) {
	res, err := s.resolver.Effective(ctx, formID)
	switch {
	case err == nil:
		return res.Raw, nil
	case errors.Is(err, forms.ErrNotFound):
		if forms.IsObject(client) {
			return client, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
}

// List returns the submissions for formID that match q.
func (s *Service) List(ctx context.Context, formID, q string) ([]models.Submission, error) {
	all, err := s.repo.ListSubmissions(ctx, formID)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return all, nil
	}
	out := []models.Submission{}
	for _, sub := range all {
		if Matches(sub.Values, q) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, formID string, id int64) (*models.Submission, error) {
	return s.repo.GetSubmission(ctx, formID, id)
}

// Identifier is the value a submission is listed under: the first non-empty
// of call sign, registration, PIN and practitioner PIN.
func Identifier(values models.Fields) string {
	return firstNonEmpty(values, "vehicleCallsign", "registration", "pin", "practitionerPin")
}

func Practitioner(values models.Fields) string {
	return values.String("practitionerName")
}

// Matches is a case-insensitive substring test of q against the identifier
// and the practitioner name. q must already be lower case.
func Matches(values models.Fields, q string) bool {
	return strings.Contains(strings.ToLower(Identifier(values)), q) ||
		strings.Contains(strings.ToLower(Practitioner(values)), q)
}

func firstNonEmpty(values models.Fields, keys ...string) string {
	for _, k := range keys {
		if s := values.String(k); s != "" {
			return s
		}
	}
	return ""
}
