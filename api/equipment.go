package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/garnizeh/ambucheck/internal/equipment"
	"github.com/garnizeh/ambucheck/internal/pdf"
	"github.com/garnizeh/ambucheck/pkg/models"
)

type EquipmentHandler struct {
	service  *equipment.Service
	images   pdf.ImageFetcher
	maxBytes int64
}

func NewEquipmentHandler(service *equipment.Service, images pdf.ImageFetcher, maxBytes int64) *EquipmentHandler {
	return &EquipmentHandler{service: service, images: images, maxBytes: maxBytes}
}

// Create takes a multipart form: a "data" JSON part plus one file part per
// photo slot.
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid equipment check data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	photos := map[string]equipment.Photo{}
	for _, slot := range models.PhotoSlots {
		headers := r.MultipartForm.File[slot]
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid equipment check data")
			return
		}
		defer f.Close()
		photos[slot] = equipment.Photo{Filename: headers[0].Filename, Body: f}
	}

	p, _ := PrincipalFrom(r.Context())
	check, err := h.service.Create(r.Context(), r.FormValue("data"), photos, p.ID)
	if errors.Is(err, equipment.ErrInvalidData) {
		writeError(w, http.StatusBadRequest, "Invalid equipment check data")
		return
	}
	if err != nil {
		logger.Error("create equipment check failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to save equipment check")
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	checks, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		logger.Error("list equipment checks failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load equipment checks")
		return
	}
	writeJSON(w, http.StatusOK, checks)
}

type preflightResponse struct {
	Ready   bool     `json:"ready"`
	Error   string   `json:"error,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// Preflight checks a draft before the photos and data are sent.
func (h *EquipmentHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	var d equipment.Draft
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid equipment check data")
		return
	}
	err := d.Ready()
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, preflightResponse{Ready: true})
	case errors.Is(err, equipment.ErrPhotosMissing):
		writeJSON(w, http.StatusBadRequest, preflightResponse{Error: equipment.ErrPhotosMissing.Error(), Missing: d.Missing()})
	default:
		writeJSON(w, http.StatusBadRequest, preflightResponse{Error: err.Error()})
	}
}

func (h *EquipmentHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Equipment check not found")
		return
	}
	check, err := h.service.Get(r.Context(), id)
	if err != nil {
		logger.Error("load equipment check failed", slog.Int64("id", id), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}
	if check == nil {
		writeError(w, http.StatusNotFound, "Equipment check not found")
		return
	}

	body, err := pdf.Bytes(r.Context(), pdf.EquipmentPlan(*check), h.images, pdf.Options{Compress: true, Now: time.Now()})
	if err != nil {
		logger.Error("render equipment pdf failed", slog.Int64("id", id), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}
	writeAttachment(w, "application/pdf", fmt.Sprintf("vdi-start-%d.pdf", id), body)
}

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Equipment check not found")
		return
	}
	found, err := h.service.Delete(r.Context(), id)
	if err != nil {
		logger.Error("delete equipment check failed", slog.Int64("id", id), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to delete equipment check")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Equipment check not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

