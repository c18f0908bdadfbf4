package api

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

type RunsheetHandler struct {
	repo repository.RunsheetRepo
}

func NewRunsheetHandler(repo repository.RunsheetRepo) *RunsheetHandler {
	return &RunsheetHandler{repo: repo}
}

type runsheetPage struct {
	Runsheets  []models.Runsheet `json:"runsheets"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

// List pages through runsheets, newest shift first. search matches call sign
// or trust case-insensitively, or the shift date verbatim.
func (h *RunsheetHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := positiveInt(q.Get("page"), 1)
	limit := min(positiveInt(q.Get("limit"), defaultPageSize), maxPageSize)
	search := q.Get("search")

	all, err := h.repo.ListRunsheets(r.Context())
	if err != nil {
		logger.Error("list runsheets failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load runsheets")
		return
	}

	filtered := FilterRunsheets(all, search)
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ShiftTime().After(filtered[j].ShiftTime())
	})

	total := len(filtered)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	// pages past the end are empty; checked before multiplying so huge page
	// numbers cannot overflow
	start, end := total, total
	if page-1 < totalPages {
		start = (page - 1) * limit
		end = min(start+limit, total)
	}

	writeJSON(w, http.StatusOK, runsheetPage{
		Runsheets:  filtered[start:end],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	})
}

func (h *RunsheetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "Runsheet not found")
		return
	}
	rs, err := h.repo.GetRunsheet(r.Context(), id)
	if err != nil {
		logger.Error("load runsheet failed", slog.Int64("id", id), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Failed to load runsheet")
		return
	}
	if rs == nil {
		writeError(w, http.StatusNotFound, "Runsheet not found")
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

// FilterRunsheets returns a new slice with the runsheets matching search.
func FilterRunsheets(all []models.Runsheet, search string) []models.Runsheet {
	out := make([]models.Runsheet, 0, len(all))
	lower := strings.ToLower(search)
	for _, rs := range all {
		if search == "" ||
			strings.Contains(strings.ToLower(rs.Callsign), lower) ||
			strings.Contains(strings.ToLower(rs.Trust), lower) ||
			strings.Contains(rs.ShiftDate, search) {
			out = append(out, rs)
		}
	}
	return out
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
