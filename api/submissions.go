package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/garnizeh/ambucheck/internal/export"
	"github.com/garnizeh/ambucheck/internal/forms"
	"github.com/garnizeh/ambucheck/internal/pdf"
	"github.com/garnizeh/ambucheck/internal/submissions"
	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SubmissionsHandler struct {
	service  *submissions.Service
	resolver *forms.Resolver
	images   pdf.ImageFetcher
}

func NewSubmissionsHandler(service *submissions.Service, resolver *forms.Resolver, images pdf.ImageFetcher) *SubmissionsHandler {
	return &SubmissionsHandler{service: service, resolver: resolver, images: images}
}

type submitRequest struct {
	Values       json.RawMessage `json:"values"`
	FormSnapshot json.RawMessage `json:"formSnapshot"`
}

func (h *SubmissionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	p, _ := PrincipalFrom(r.Context())
	sub, err := h.service.Submit(r.Context(), formID, req.Values, req.FormSnapshot, p.ID)
	switch {
	case errors.Is(err, submissions.ErrInvalidValues), errors.Is(err, repository.ErrInvalidFormID):
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to save form submission. Please try again.")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// List is the admin listing, filtered by ?q= on identifier and practitioner.
func (h *SubmissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]
	if !repository.ValidFormID(formID) {
		writeError(w, http.StatusBadRequest, "Invalid form id")
		return
	}
	subs, err := h.service.List(r.Context(), formID, r.URL.Query().Get("q"))
	if err != nil {
		logger.Error("list submissions failed", slog.String("form_id", formID), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load submissions")
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *SubmissionsHandler) PDF(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]
	id, ok := pathID(r, "submissionId")
	if !ok || !repository.ValidFormID(formID) {
		writeError(w, http.StatusNotFound, "Submission not found")
		return
	}
	sub, err := h.service.Get(r.Context(), formID, id)
	if err != nil {
		logger.Error("load submission failed", slog.String("form_id", formID), slog.Int64("id", id), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "Submission not found")
		return
	}

	var snap *models.FormDefinition
	if sub.HasSnapshot() {
		def := forms.DecodeDefinition(formID, sub.FormSnapshot)
		snap = &def
	}

	body, err := pdf.Bytes(r.Context(), pdf.SubmissionPlan(*sub, snap), h.images, pdf.Options{Compress: true, Now: time.Now()})
	if err != nil {
		logger.Error("render submission pdf failed", slog.String("form_id", formID), slog.Int64("id", id), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}
	writeAttachment(w, "application/pdf", fmt.Sprintf("%s-submission-%d.pdf", formID, id), body)
}

// Export writes every submission of a form as an xlsx workbook, with columns
// from the effective schema.
func (h *SubmissionsHandler) Export(w http.ResponseWriter, r *http.Request) {
	formID := mux.Vars(r)["formId"]
	if !repository.ValidFormID(formID) {
		writeError(w, http.StatusBadRequest, "Invalid form id")
		return
	}

	def := models.FormDefinition{ID: formID}
	res, err := h.resolver.Effective(r.Context(), formID)
	switch {
	case err == nil:
		def = res.Definition
	case !errors.Is(err, forms.ErrNotFound):
		logger.Error("resolve schema failed", slog.String("form_id", formID), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to export submissions")
		return
	}

	subs, err := h.service.List(r.Context(), formID, r.URL.Query().Get("q"))
	if err != nil {
		logger.Error("list submissions failed", slog.String("form_id", formID), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load submissions")
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, def, subs); err != nil {
		logger.Error("export failed", slog.String("form_id", formID), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to export submissions")
		return
	}
	writeAttachment(w, xlsxContentType, formID+"-submissions.xlsx", buf.Bytes())
}
