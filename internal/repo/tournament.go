package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmichard/tourneyhub/internal/models"
)

// ==========================
// TournamentRepo
// ==========================
type TournamentRepo struct {
	DB *sql.DB
}

func NewTournamentRepo(db *sql.DB) *TournamentRepo {
	return &TournamentRepo{DB: db}
}

// Create inserts a tournament with an empty participant set and returns its id.
func (r *TournamentRepo) Create(ctx context.Context, organizerID, name, game, format string, date time.Time, maxParticipants int) (string, error) {
	query := `
		INSERT INTO tournaments (id, name, game, format, date, max_participants, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id string
	err := r.DB.QueryRowContext(ctx, query,
		uuid.NewString(), name, game, format, date, maxParticipants, organizerID).
		Scan(&id)
	if err != nil {
		return "", err
	}

	return id, nil
}

// GetByID loads one tournament with its organizer and participant projections.
func (r *TournamentRepo) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `
		SELECT t.id, t.name, t.game, t.format, t.date, t.max_participants, t.created_at,
		       u.id, u.username, u.email
		FROM tournaments t
		JOIN users u ON u.id = t.organizer_id
		WHERE t.id = $1
	`

	t := &models.Tournament{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Game, &t.Format, &t.Date, &t.MaxParticipants, &t.CreatedAt,
		&t.Organizer.ID, &t.Organizer.Username, &t.Organizer.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	participants, err := r.participants(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Participants = participants
	t.CurrentParticipants = len(participants)

	return t, nil
}

// List returns all tournaments in creation order, each with organizer and
// participants resolved.
func (r *TournamentRepo) List(ctx context.Context) ([]models.Tournament, error) {
	query := `
		SELECT t.id, t.name, t.game, t.format, t.date, t.max_participants, t.created_at,
		       u.id, u.username, u.email
		FROM tournaments t
		JOIN users u ON u.id = t.organizer_id
		ORDER BY t.created_at, t.id
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tournaments []models.Tournament
	index := make(map[string]int)
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Game, &t.Format, &t.Date, &t.MaxParticipants, &t.CreatedAt,
			&t.Organizer.ID, &t.Organizer.Username, &t.Organizer.Email,
		); err != nil {
			return nil, err
		}
		t.Participants = []models.PublicUser{}
		index[t.ID] = len(tournaments)
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Second query resolves every roster at once instead of one query per row.
	pRows, err := r.DB.QueryContext(ctx, `
		SELECT p.tournament_id, u.id, u.username, u.email
		FROM tournament_participants p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.joined_at, p.user_id
	`)
	if err != nil {
		return nil, err
	}
	defer pRows.Close()

	for pRows.Next() {
		var tournamentID string
		var u models.PublicUser
		if err := pRows.Scan(&tournamentID, &u.ID, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		if i, ok := index[tournamentID]; ok {
			tournaments[i].Participants = append(tournaments[i].Participants, u)
		}
	}
	if err := pRows.Err(); err != nil {
		return nil, err
	}

	for i := range tournaments {
		tournaments[i].CurrentParticipants = len(tournaments[i].Participants)
	}

	return tournaments, nil
}

func (r *TournamentRepo) participants(ctx context.Context, tournamentID string) ([]models.PublicUser, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.username, u.email
		FROM tournament_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.tournament_id = $1
		ORDER BY p.joined_at, p.user_id
	`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []models.PublicUser{}
	for rows.Next() {
		var u models.PublicUser
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		participants = append(participants, u)
	}
	return participants, rows.Err()
}

// LockForJoin locks the tournament row and returns its capacity. It must run
// inside the transaction that performs the membership insert so concurrent
// joins serialize on the row lock.
func (r *TournamentRepo) LockForJoin(ctx context.Context, tx *sql.Tx, tournamentID string) (int, error) {
	var maxParticipants int
	err := tx.QueryRowContext(ctx,
		`SELECT max_participants FROM tournaments WHERE id = $1 FOR UPDATE`,
		tournamentID).Scan(&maxParticipants)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return maxParticipants, nil
}

// CountParticipants counts the current roster size within tx.
func (r *TournamentRepo) CountParticipants(ctx context.Context, tx *sql.Tx, tournamentID string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournament_participants WHERE tournament_id = $1`,
		tournamentID).Scan(&n)
	return n, err
}

// AddParticipant adds userID to the roster within tx. Re-adding an existing
// member is a no-op; the return value reports whether a row was inserted.
func (r *TournamentRepo) AddParticipant(ctx context.Context, tx *sql.Tx, tournamentID, userID string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO tournament_participants (tournament_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (tournament_id, user_id) DO NOTHING
	`, tournamentID, userID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// RemoveParticipant removes userID from the roster. Removing a non-member is a no-op.
func (r *TournamentRepo) RemoveParticipant(ctx context.Context, tournamentID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM tournament_participants WHERE tournament_id = $1 AND user_id = $2`,
		tournamentID, userID)
	return err
}

// Exists reports whether a tournament with the given id exists.
func (r *TournamentRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournaments WHERE id = $1`, id).Scan(&n)
	return n > 0, err
}

// Count returns the total number of tournaments.
func (r *TournamentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments`).Scan(&n)
	return n, err
}
