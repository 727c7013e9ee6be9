package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/jmichard/tourneyhub/internal/repo"
	"github.com/jmichard/tourneyhub/internal/token"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo  *repo.UserRepo
	AuditRepo *repo.AuditRepo
	Issuer    *token.Issuer
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if len(input.Username) < 3 {
		fields["username"] = "must be at least 3 characters"
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if len(input.Password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.Create(r.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateUser) {
			JSONError(w, "user already exists", http.StatusBadRequest)
			return
		}
		slog.Error("register: create user failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	signed, err := h.Issuer.Issue(user.ID)
	if err != nil {
		slog.Error("register: issue token failed", "error", err)
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	if h.AuditRepo != nil {
		_ = h.AuditRepo.Log(r.Context(), user.ID, "register", "user", user.ID, "")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":  user.Public(),
		"token": signed,
	})
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// One message for both unknown email and wrong password.
	user, err := h.UserRepo.GetByEmail(r.Context(), input.Email)
	if err != nil {
		JSONError(w, "invalid email or password", http.StatusUnauthorized)
		return
	}
	if !repo.CheckPassword(user, input.Password) {
		JSONError(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	signed, err := h.Issuer.Issue(user.ID)
	if err != nil {
		slog.Error("login: issue token failed", "error", err)
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":  user.Public(),
		"token": signed,
	})
}
