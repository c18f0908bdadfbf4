package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/ambucheck/api"
)

func TestSystemHandlers(t *testing.T) {
	h := &api.SystemHandler{}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.HealthHandler(w, req)
	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health: expected 200 got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("health: expected json content-type, got %q", ct)
	}
	var health struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Service   string `json:"service"`
	}
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		t.Fatalf("health: decode: %v", err)
	}
	if health.Status != "ok" || health.Service != "AmbuCheck API" {
		t.Fatalf("health: unexpected body %+v", health)
	}
	if _, err := time.Parse(time.RFC3339, health.Timestamp); err != nil {
		t.Fatalf("health: timestamp %q: %v", health.Timestamp, err)
	}

	vh := h.VersionHandler("1.2.3", "2026-01-28T00:00:00Z")
	w2 := httptest.NewRecorder()
	vh(w2, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	res2 := w2.Result()
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusOK {
		t.Fatalf("version: expected 200 got %d", res2.StatusCode)
	}
	b2, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b2), `"version":"1.2.3"`) || !strings.Contains(string(b2), `"buildTime":"2026-01-28T00:00:00Z"`) {
		t.Fatalf("version: unexpected body %s", string(b2))
	}
}
