package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

var (
	ErrNotFound      = errors.New("form not found")
	ErrInvalidConfig = errors.New("form config must be a JSON object")
)

// Source tells where an effective schema came from.
type Source string

const (
	SourceOverride Source = "override"
	SourceDefault  Source = "default"
)

// Resolved is the schema in effect for a form id. Raw is the exact JSON that
// gets frozen into a submission snapshot.
type Resolved struct {
	Definition models.FormDefinition
	Raw        json.RawMessage
	Source     Source
}

// Resolver combines the registry with stored overrides. An override always
// wins over the registry default.
type Resolver struct {
	registry  *Registry
	overrides repository.OverrideRepo
	linter    *Linter
	logger    *slog.Logger
}

func NewResolver(reg *Registry, overrides repository.OverrideRepo, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Resolver{registry: reg, overrides: overrides, linter: NewLinter(), logger: logger}
}

func (r *Resolver) Registry() *Registry { return r.registry }

// Effective returns the override for formID if one is stored, otherwise the
// registry default, otherwise ErrNotFound.
func (r *Resolver) Effective(ctx context.Context, formID string) (*Resolved, error) {
	if r.overrides != nil && repository.ValidFormID(formID) {
		raw, err := r.overrides.GetOverride(ctx, formID)
		if err != nil {
			return nil, fmt.Errorf("load override %s: %w", formID, err)
		}
		if raw != nil {
			return &Resolved{Definition: DecodeDefinition(formID, raw), Raw: raw, Source: SourceOverride}, nil
		}
	}

	def, ok := r.registry.Get(formID)
	if !ok {
		return nil, ErrNotFound
	}
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", formID, err)
	}
	return &Resolved{Definition: def, Raw: raw, Source: SourceDefault}, nil
}

// Override returns the stored override for formID, or nil when none exists.
func (r *Resolver) Override(ctx context.Context, formID string) (json.RawMessage, error) {
	if !repository.ValidFormID(formID) {
		return nil, nil
	}
	return r.overrides.GetOverride(ctx, formID)
}

// SetOverride replaces the override for formID. Any JSON object is accepted;
// lint findings are returned as warnings and never block the write.
func (r *Resolver) SetOverride(ctx context.Context, formID string, raw json.RawMessage) ([]string, error) {
	if !repository.ValidFormID(formID) {
		return nil, repository.ErrInvalidFormID
	}
	if !IsObject(raw) {
		return nil, ErrInvalidConfig
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return nil, ErrInvalidConfig
	}

	warnings := r.linter.Lint(ctx, formID, compact.Bytes())
	if len(warnings) > 0 {
		r.logger.Warn("form override lint", slog.String("form_id", formID), slog.Any("warnings", warnings))
	}

	if err := r.overrides.SetOverride(ctx, formID, compact.Bytes()); err != nil {
		return nil, fmt.Errorf("save override %s: %w", formID, err)
	}
	r.logger.Info("form override saved", slog.String("form_id", formID), slog.Int("warnings", len(warnings)))

	return warnings, nil
}

// DecodeDefinition decodes a stored schema leniently: anything unreadable
// yields an empty definition. The id is always formID so rules keyed on the
// form keep applying to overrides.
func DecodeDefinition(formID string, raw json.RawMessage) models.FormDefinition {
	var def models.FormDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		def = models.FormDefinition{}
		var loose struct {
			Title string `json:"title"`
		}
		_ = json.Unmarshal(raw, &loose)
		def.Title = loose.Title
	}
	def.ID = formID
	return def
}

// IsObject reports whether raw holds a JSON object.
func IsObject(raw json.RawMessage) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe != nil
}
