package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

var invalidRoleMessage = "Role must be one of: " + strings.Join(models.PractitionerRoles, ", ")

// AdminHandler serves the reference data managed from the admin console.
type AdminHandler struct {
	users         repository.UserRepo
	practitioners repository.PractitionerRepo
	vehicles      repository.VehicleRepo
}

func NewAdminHandler(users repository.UserRepo, practitioners repository.PractitionerRepo, vehicles repository.VehicleRepo) *AdminHandler {
	return &AdminHandler{users: users, practitioners: practitioners, vehicles: vehicles}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		logger.Error("list users failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load users")
		return
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) ListPractitioners(w http.ResponseWriter, r *http.Request) {
	list, err := h.practitioners.ListPractitioners(r.Context())
	if err != nil {
		logger.Error("list practitioners failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load practitioners")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) CreatePractitioner(w http.ResponseWriter, r *http.Request) {
	var req models.PractitionerPatch
	if err := decodeJSON(w, r, &req); err != nil || req.Name == nil || req.Pin == nil ||
		strings.TrimSpace(*req.Name) == "" || strings.TrimSpace(*req.Pin) == "" {
		writeError(w, http.StatusBadRequest, "Name and PIN are required")
		return
	}
	if req.Role != nil && !models.ValidPractitionerRole(*req.Role) {
		writeError(w, http.StatusBadRequest, invalidRoleMessage)
		return
	}
	p := models.Practitioner{Role: "crew", Active: true}
	req.ApplyTo(&p)

	created, err := h.practitioners.CreatePractitioner(r.Context(), &p)
	if err != nil {
		logger.Error("create practitioner failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to create practitioner")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) UpdatePractitioner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Practitioner not found")
		return
	}
	var patch models.PractitionerPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid practitioner data")
		return
	}
	if patch.Role != nil && !models.ValidPractitionerRole(*patch.Role) {
		writeError(w, http.StatusBadRequest, invalidRoleMessage)
		return
	}
	updated, err := h.practitioners.UpdatePractitioner(r.Context(), id, patch)
	if err != nil {
		logger.Error("update practitioner failed", slog.Int64("id", id), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to update practitioner")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Practitioner not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeletePractitioner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Practitioner not found")
		return
	}
	found, err := h.practitioners.DeletePractitioner(r.Context(), id)
	if err != nil {
		logger.Error("delete practitioner failed", slog.Int64("id", id), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to delete practitioner")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Practitioner not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListVehicles is open to every signed-in user; the VDI form picks from it.
func (h *AdminHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	list, err := h.vehicles.ListVehicles(r.Context())
	if err != nil {
		logger.Error("list vehicles failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load vehicles")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req models.VehiclePatch
	if err := decodeJSON(w, r, &req); err != nil || req.Registration == nil || strings.TrimSpace(*req.Registration) == "" {
		writeError(w, http.StatusBadRequest, "Registration is required")
		return
	}
	var v models.Vehicle
	req.ApplyTo(&v)

	created, err := h.vehicles.CreateVehicle(r.Context(), &v)
	if err != nil {
		logger.Error("create vehicle failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to create vehicle")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Vehicle not found")
		return
	}
	var patch models.VehiclePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid vehicle data")
		return
	}
	updated, err := h.vehicles.UpdateVehicle(r.Context(), id, patch)
	if err != nil {
		logger.Error("update vehicle failed", slog.Int64("id", id), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to update vehicle")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Vehicle not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Vehicle not found")
		return
	}
	found, err := h.vehicles.DeleteVehicle(r.Context(), id)
	if err != nil {
		logger.Error("delete vehicle failed", slog.Int64("id", id), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to delete vehicle")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Vehicle not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
