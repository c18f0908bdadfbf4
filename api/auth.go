package api

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

type AuthHandler struct {
	userRepo      repository.UserRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{userRepo: ur, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Pin      string `json:"pin,omitempty"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.userRepo.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		logger.Error("login lookup failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if user == nil {
		logger.Info("login rejected", slog.String("reason", "unknown user"))
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		logger.Info("login rejected", slog.String("reason", "bad password"), slog.String("username", user.Username))
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := IssueToken(h.jwtSecret, *user, h.tokenDuration)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error signing token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user.Public()})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	user, err := h.userRepo.GetUserByID(r.Context(), p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}
