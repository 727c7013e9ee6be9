package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmichard/tourneyhub/internal/metrics"
	"github.com/jmichard/tourneyhub/internal/models"
	"github.com/jmichard/tourneyhub/internal/repo"
)

// ErrNotFound is returned when the tournament does not exist.
var ErrNotFound = repo.ErrNotFound

// ErrTournamentFull is returned by Join when the roster is at capacity.
var ErrTournamentFull = errors.New("tournament is full")

// TournamentService enforces participation invariants on top of the store:
// the roster never exceeds max_participants, joining twice is a no-op, and
// leaving without having joined is a no-op.
type TournamentService struct {
	db    *sql.DB
	repo  *repo.TournamentRepo
	audit *repo.AuditRepo
}

func NewTournamentService(db *sql.DB, tournamentRepo *repo.TournamentRepo, auditRepo *repo.AuditRepo) *TournamentService {
	return &TournamentService{db: db, repo: tournamentRepo, audit: auditRepo}
}

// CreateInput carries the validated fields for a new tournament.
type CreateInput struct {
	Name            string
	Game            string
	Format          string
	Date            time.Time
	MaxParticipants int
}

// ListAll returns every tournament in creation order with organizer and
// participants resolved to public projections.
func (s *TournamentService) ListAll(ctx context.Context) ([]models.Tournament, error) {
	return s.repo.List(ctx)
}

// Create inserts a tournament owned by organizerID with an empty roster.
func (s *TournamentService) Create(ctx context.Context, organizerID string, in CreateInput) (*models.Tournament, error) {
	id, err := s.repo.Create(ctx, organizerID, in.Name, in.Game, in.Format, in.Date, in.MaxParticipants)
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, organizerID, "create", id, "")
	metrics.IncTournamentOps("create")

	return s.repo.GetByID(ctx, id)
}

// Join adds userID to the tournament roster. The capacity check and the
// insert run in one transaction holding a row lock on the tournament, so
// concurrent joins cannot push the roster past max_participants.
func (s *TournamentService) Join(ctx context.Context, tournamentID, userID string) (*models.Tournament, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	maxParticipants, err := s.repo.LockForJoin(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}

	inserted, err := s.repo.AddParticipant(ctx, tx, tournamentID, userID)
	if err != nil {
		return nil, err
	}

	// Counting after the insert covers both cases: an existing member never
	// grows the roster, a new member must still fit under the cap.
	count, err := s.repo.CountParticipants(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if count > maxParticipants {
		metrics.IncTournamentOps("join_rejected")
		return nil, ErrTournamentFull
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if inserted {
		s.logAudit(ctx, userID, "join", tournamentID, "")
		metrics.IncTournamentOps("join")
	}

	return s.repo.GetByID(ctx, tournamentID)
}

// Leave removes userID from the roster. Removing a non-member is a no-op.
func (s *TournamentService) Leave(ctx context.Context, tournamentID, userID string) (*models.Tournament, error) {
	exists, err := s.repo.Exists(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	if err := s.repo.RemoveParticipant(ctx, tournamentID, userID); err != nil {
		return nil, err
	}

	s.logAudit(ctx, userID, "leave", tournamentID, "")
	metrics.IncTournamentOps("leave")

	return s.repo.GetByID(ctx, tournamentID)
}

// logAudit records the action without failing the operation on audit errors.
func (s *TournamentService) logAudit(ctx context.Context, userID, action, tournamentID, details string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Log(ctx, userID, action, "tournament", tournamentID, details)
}
