package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/ambucheck/api"
	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/golang-jwt/jwt/v5"
)

func TestLoggingMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	})

	handler := api.LoggingMiddleware(next)
	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "ok" {
		t.Fatalf("unexpected body: %q", string(b))
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := api.CORSMiddleware(next)

	// OPTIONS should return 204 and not call next
	reqOpt := httptest.NewRequest(http.MethodOptions, "/cors", nil)
	wOpt := httptest.NewRecorder()
	handler.ServeHTTP(wOpt, reqOpt)
	resOpt := wOpt.Result()
	defer resOpt.Body.Close()
	if resOpt.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for OPTIONS, got %d", resOpt.StatusCode)
	}
	if got := resOpt.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header set, got %q", got)
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/cors", nil)
	wGet := httptest.NewRecorder()
	handler.ServeHTTP(wGet, reqGet)
	resGet := wGet.Result()
	defer resGet.Body.Close()
	if resGet.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for GET, got %d", resGet.StatusCode)
	}
	if got := resGet.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "DELETE") {
		t.Fatalf("expected Allow-Methods to include DELETE, got %q", got)
	}
	if got := resGet.Header.Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Fatalf("expected Allow-Headers to include Authorization, got %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	pan := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := api.RecoveryMiddleware(pan)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 from panic recovery, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"error":"Internal Server Error"`) {
		t.Fatalf("unexpected body for recovery: %s", string(b))
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	w2 := httptest.NewRecorder()
	api.RecoveryMiddleware(ok).ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w2.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for normal path, got %d", w2.Result().StatusCode)
	}
}

func TestJWTAuthMiddlewareWithSecret(t *testing.T) {
	secret := "s3cr3t"
	var seen api.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = api.PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := api.JWTAuthMiddlewareWithSecret(secret)(next)

	expired, err := api.IssueToken(secret, models.User{ID: 1, Username: "a"}, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	otherKey, err := api.IssueToken("other", models.User{ID: 1, Username: "a"}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": 1})
	noneStr, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{name: "MissingHeader", authHeader: "", wantStatus: http.StatusUnauthorized, wantBody: "Access token required"},
		{name: "EmptyBearer", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized, wantBody: "Access token required"},
		{name: "NoScheme", authHeader: "justatoken", wantStatus: http.StatusUnauthorized, wantBody: "Access token required"},
		{name: "BadToken", authHeader: "Bearer bad.token.here", wantStatus: http.StatusForbidden, wantBody: "Invalid or expired token"},
		{name: "Expired", authHeader: "Bearer " + expired, wantStatus: http.StatusForbidden, wantBody: "Invalid or expired token"},
		{name: "WrongKey", authHeader: "Bearer " + otherKey, wantStatus: http.StatusForbidden, wantBody: "Invalid or expired token"},
		{name: "AlgNone", authHeader: "Bearer " + noneStr, wantStatus: http.StatusForbidden, wantBody: "Invalid or expired token"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/jwt", nil)
			if c.authHeader != "" {
				req.Header.Set("Authorization", c.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Result().StatusCode != c.wantStatus {
				t.Fatalf("%s: want %d got %d", c.name, c.wantStatus, w.Result().StatusCode)
			}
			if !strings.Contains(w.Body.String(), c.wantBody) {
				t.Fatalf("%s: body %s does not mention %q", c.name, w.Body.String(), c.wantBody)
			}
		})
	}

	tokStr, err := api.IssueToken(secret, models.User{ID: 7, Username: "crew", Role: models.RoleUser, Name: "Crew Member"}, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/jwt", nil)
	req.Header.Set("Authorization", "Bearer "+tokStr)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("valid token: expected 200 got %d", w.Result().StatusCode)
	}
	want := api.Principal{ID: 7, Username: "crew", Role: models.RoleUser, Name: "Crew Member"}
	if seen != want {
		t.Fatalf("principal: want %+v got %+v", want, seen)
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := api.RequireAdmin(next)

	cases := []struct {
		name       string
		principal  *api.Principal
		wantStatus int
	}{
		{"NoPrincipal", nil, http.StatusForbidden},
		{"User", &api.Principal{ID: 2, Role: models.RoleUser}, http.StatusForbidden},
		{"Admin", &api.Principal{ID: 1, Role: models.RoleAdmin}, http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if c.principal != nil {
				req = req.WithContext(api.WithPrincipal(req.Context(), *c.principal))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != c.wantStatus {
				t.Fatalf("want %d got %d", c.wantStatus, w.Code)
			}
			if c.wantStatus == http.StatusForbidden && !strings.Contains(w.Body.String(), "Admin access required") {
				t.Fatalf("unexpected body %s", w.Body.String())
			}
		})
	}
}
