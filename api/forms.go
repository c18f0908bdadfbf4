package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"github.com/garnizeh/ambucheck/internal/forms"
	"github.com/garnizeh/ambucheck/internal/rules"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

type FormsHandler struct {
	resolver  *forms.Resolver
	overrides repository.OverrideRepo
	table     rules.Table
	now       func() time.Time
}

// NewFormsHandler creates a FormsHandler serving schemas, overrides and rule views.
func NewFormsHandler(resolver *forms.Resolver, overrides repository.OverrideRepo, table rules.Table) *FormsHandler {
	return &FormsHandler{resolver: resolver, overrides: overrides, table: table, now: time.Now}
}

type formSummary struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Source forms.Source `json:"source"`
}

// List returns the catalogue followed by forms that only exist as overrides.
func (h *FormsHandler) List(w http.ResponseWriter, r *http.Request) {
	stored, err := h.overrides.ListOverrides(r.Context())
	if err != nil {
		logger.Error("list overrides failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load forms")
		return
	}

	out := []formSummary{}
	seen := map[string]bool{}
	for _, def := range h.resolver.Registry().List() {
		s := formSummary{ID: def.ID, Title: def.Title, Source: forms.SourceDefault}
		if raw, ok := stored[def.ID]; ok {
			s.Title = forms.DecodeDefinition(def.ID, raw).Title
			s.Source = forms.SourceOverride
		}
		out = append(out, s)
		seen[def.ID] = true
	}

	var extra []string
	for id := range stored {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		out = append(out, formSummary{ID: id, Title: forms.DecodeDefinition(id, stored[id]).Title, Source: forms.SourceOverride})
	}

	writeJSON(w, http.StatusOK, out)
}

type schemaResponse struct {
	FormID string          `json:"formId"`
	Source forms.Source    `json:"source"`
	Config json.RawMessage `json:"config"`
}

// Schema returns the effective schema for a form.
func (h *FormsHandler) Schema(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]
	res, err := h.resolver.Effective(r.Context(), formID)
	if errors.Is(err, forms.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	if err != nil {
		logger.Error("resolve schema failed", slog.String("form_id", formID), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load form")
		return
	}
	writeJSON(w, http.StatusOK, schemaResponse{FormID: formID, Source: res.Source, Config: res.Raw})
}

type overrideResponse struct {
	FormID   string          `json:"formId"`
	Config   json.RawMessage `json:"config"`
	Warnings []string        `json:"warnings,omitempty"`
}

// GetConfig returns the stored override only, never the default.
func (h *FormsHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]
	raw, err := h.resolver.Override(r.Context(), formID)
	if err != nil {
		logger.Error("load override failed", slog.String("form_id", formID), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load form config")
		return
	}
	if raw == nil {
		writeError(w, http.StatusNotFound, "No override found")
		return
	}
	writeJSON(w, http.StatusOK, overrideResponse{FormID: formID, Config: raw})
}

// PutConfig replaces the override for a form.
func (h *FormsHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]
	var req struct {
		Config json.RawMessage `json:"config"`
	}
	if err := decodeJSON(w, r, &req); err != nil || !forms.IsObject(req.Config) {
		writeError(w, http.StatusBadRequest, "Valid form config object is required")
		return
	}

	warnings, err := h.resolver.SetOverride(r.Context(), formID, req.Config)
	switch {
	case errors.Is(err, repository.ErrInvalidFormID):
		writeError(w, http.StatusBadRequest, "Invalid form id")
		return
	case errors.Is(err, forms.ErrInvalidConfig):
		writeError(w, http.StatusBadRequest, "Valid form config object is required")
		return
	case err != nil:
		logger.Error("save override failed", slog.String("form_id", formID), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to save form config")
		return
	}

	saved, err := h.resolver.Override(r.Context(), formID)
	if err != nil || saved == nil {
		saved = req.Config
	}
	writeJSON(w, http.StatusOK, overrideResponse{FormID: formID, Config: saved, Warnings: warnings})
}

type viewRequest struct {
	Values  map[string]any `json:"values"`
	Answers map[string]any `json:"answers,omitempty"`
	Set     *struct {
		Field string `json:"field"`
		Value any    `json:"value"`
	} `json:"set,omitempty"`
	Toggle  string `json:"toggle,omitempty"`
	Prefill bool   `json:"prefill,omitempty"`
}

// View evaluates the rule table for a set of answers, optionally applying one
// change first.
func (h *FormsHandler) View(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]
	var req viewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	res, err := h.resolver.Effective(r.Context(), formID)
	if errors.Is(err, forms.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Form not found")
		return
	}
	if err != nil {
		logger.Error("resolve schema failed", slog.String("form_id", formID), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load form")
		return
	}

	answers := req.Values
	if answers == nil {
		answers = req.Answers
	}
	if req.Prefill {
		answers = rules.Prefill(res.Definition, answers, h.now(), h.table)
	}

	var view rules.View
	switch {
	case req.Set != nil && req.Set.Field != "":
		view = rules.Apply(res.Definition, answers, req.Set.Field, req.Set.Value, h.table)
	case req.Toggle != "":
		view = rules.Toggle(res.Definition, answers, req.Toggle, h.table)
	default:
		view = rules.ComputeView(res.Definition, answers, h.table)
	}
	writeJSON(w, http.StatusOK, view)
}
