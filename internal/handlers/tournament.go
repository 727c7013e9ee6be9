package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jmichard/tourneyhub/internal/middleware"
	"github.com/jmichard/tourneyhub/internal/models"
	"github.com/jmichard/tourneyhub/internal/service"
)

// ==========================
// TournamentHandler
// ==========================
type TournamentHandler struct {
	Service *service.TournamentService
}

// dateLayouts accepted for the tournament date. Browsers submit
// datetime-local values without a zone; API clients send RFC 3339.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// ==========================
// List Tournaments (public)
// ==========================
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.Service.ListAll(r.Context())
	if err != nil {
		slog.Error("list tournaments failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if tournaments == nil {
		tournaments = []models.Tournament{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tournaments)
}

// ==========================
// Create Tournament
// ==========================
func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "not authorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		Name            string `json:"name"`
		Game            string `json:"game"`
		Format          string `json:"format"`
		Date            string `json:"date"`
		MaxParticipants int    `json:"maxParticipants"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if len(input.Name) < 3 {
		fields["name"] = "must be at least 3 characters"
	}
	if input.Game == "" {
		fields["game"] = "required"
	}
	if !models.ValidFormat(input.Format) {
		fields["format"] = "must be SOLO, DUO or TEAM"
	}
	date, dateOK := parseDate(input.Date)
	if !dateOK {
		fields["date"] = "must be a valid timestamp"
	}
	if input.MaxParticipants < 2 || input.MaxParticipants > 128 {
		fields["maxParticipants"] = "must be between 2 and 128"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	tournament, err := h.Service.Create(r.Context(), userID, service.CreateInput{
		Name:            input.Name,
		Game:            input.Game,
		Format:          input.Format,
		Date:            date,
		MaxParticipants: input.MaxParticipants,
	})
	if err != nil {
		slog.Error("create tournament failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tournament)
}

// ==========================
// Join Tournament
// ==========================
func (h *TournamentHandler) JoinTournament(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "not authorized", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	tournament, err := h.Service.Join(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			JSONError(w, "tournament not found", http.StatusNotFound)
		case errors.Is(err, service.ErrTournamentFull):
			JSONError(w, "tournament is full", http.StatusConflict)
		default:
			slog.Error("join tournament failed", "tournament_id", id, "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tournament)
}

// ==========================
// Leave Tournament
// ==========================
func (h *TournamentHandler) LeaveTournament(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "not authorized", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	tournament, err := h.Service.Leave(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			JSONError(w, "tournament not found", http.StatusNotFound)
			return
		}
		slog.Error("leave tournament failed", "tournament_id", id, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tournament)
}
