package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/ambucheck/internal/uploads"
)

type UploadHandler struct {
	store    *uploads.Store
	maxBytes int64
}

func NewUploadHandler(store *uploads.Store, maxBytes int64) *UploadHandler {
	return &UploadHandler{store: store, maxBytes: maxBytes}
}

type uploadResponse struct {
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	FieldName string `json:"fieldName"`
}

// Upload stores the "file" part of a multipart request for a form field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	field := mux.Vars(r)["fieldName"]
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	res, err := h.store.Save(r.Context(), field, header.Filename, file)
	if errors.Is(err, uploads.ErrEmptyUpload) {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	if err != nil {
		logger.Error("upload failed", slog.String("field", field), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Filename: res.Filename, Path: res.Path, FieldName: field})
}
