package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/ambucheck/api"
	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository/mock"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func hashed(t *testing.T, pw string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(hash)
}

func TestLogin(t *testing.T) {
	secret := "testsecret"
	tokenDur := time.Hour

	tests := []struct {
		name       string
		body       any
		prepare    func(t *testing.T, m *mock.Store)
		wantStatus int
		checkBody  func(t *testing.T, body []byte)
	}{
		{
			name:       "InvalidRequest",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, b []byte) {
				if !bytes.Contains(b, []byte("Username and password are required")) {
					t.Fatalf("unexpected body: %s", b)
				}
			},
		},
		{
			name:       "MissingPassword",
			body:       map[string]string{"username": "admin"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingUsername",
			body:       map[string]string{"password": "x"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownUser",
			body:       map[string]string{"username": "ghost", "password": "x"},
			wantStatus: http.StatusUnauthorized,
			checkBody: func(t *testing.T, b []byte) {
				if !bytes.Contains(b, []byte("Invalid credentials")) {
					t.Fatalf("unexpected body: %s", b)
				}
			},
		},
		{
			name: "WrongPassword",
			body: map[string]string{"username": "admin", "password": "wrong"},
			prepare: func(t *testing.T, m *mock.Store) {
				m.Users = []models.User{{ID: 1, Username: "admin", PasswordHash: hashed(t, "right"), Role: models.RoleAdmin}}
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "StoreError",
			body: map[string]string{"username": "admin", "password": "x"},
			prepare: func(t *testing.T, m *mock.Store) {
				m.Err = errors.New("disk on fire")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "Success",
			body: map[string]string{"username": "admin", "password": "admin1994"},
			prepare: func(t *testing.T, m *mock.Store) {
				m.Users = []models.User{{ID: 1, Username: "admin", PasswordHash: hashed(t, "admin1994"), Role: models.RoleAdmin, Name: "Admin User"}}
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				if bytes.Contains(b, []byte("password")) {
					t.Fatalf("password leaked: %s", b)
				}
				var ar struct {
					Token string      `json:"token"`
					User  models.User `json:"user"`
				}
				if err := json.Unmarshal(b, &ar); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if ar.User.ID != 1 || ar.User.Role != models.RoleAdmin || ar.User.Name != "Admin User" {
					t.Fatalf("unexpected user %+v", ar.User)
				}
				var claims api.Claims
				if _, err := jwt.ParseWithClaims(ar.Token, &claims, func(token *jwt.Token) (any, error) { return []byte(secret), nil }); err != nil {
					t.Fatalf("invalid token: %v", err)
				}
				if claims.UserID != 1 || claims.Username != "admin" || claims.Role != models.RoleAdmin {
					t.Fatalf("unexpected claims %+v", claims)
				}
				if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > tokenDur {
					t.Fatalf("invalid exp claim")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock.NewStore()
			if tt.prepare != nil {
				tt.prepare(t, store)
			}
			handler := api.NewAuthHandler(store, secret, tokenDur)

			b, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(b))
			w := httptest.NewRecorder()
			handler.Login(w, req)

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("%s: expected status %d got %d body=%s", tt.name, tt.wantStatus, res.StatusCode, string(data))
			}
			if tt.checkBody != nil {
				tt.checkBody(t, data)
			}
		})
	}
}

func TestMe(t *testing.T) {
	store := mock.NewStore()
	store.Users = []models.User{{ID: 2, Username: "user1", PasswordHash: "secret-hash", Role: models.RoleUser, Name: "Standard User"}}
	handler := api.NewAuthHandler(store, "s", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req = req.WithContext(api.WithPrincipal(req.Context(), api.Principal{ID: 2}))
	w := httptest.NewRecorder()
	handler.Me(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret-hash") || !strings.Contains(w.Body.String(), `"username":"user1"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req = req.WithContext(api.WithPrincipal(req.Context(), api.Principal{ID: 99}))
	w = httptest.NewRecorder()
	handler.Me(w, req)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "User not found") {
		t.Fatalf("expected 404 got %d %s", w.Code, w.Body.String())
	}
}
