package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmichard/tourneyhub/internal/repo"
)

const (
	tournamentID = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	organizerID  = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	joinerID     = "cccccccc-cccc-cccc-cccc-cccccccccccc"
)

func newService(t *testing.T) (*TournamentService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewTournamentService(db, repo.NewTournamentRepo(db), nil)
	return svc, mock, func() { db.Close() }
}

// expectGetByID queues the two queries GetByID issues: the tournament row
// with its organizer and the roster.
func expectGetByID(mock sqlmock.Sqlmock, participants ...string) {
	date := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT t.id, t.name, t.game, t.format`).
		WithArgs(tournamentID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "game", "format", "date", "max_participants", "created_at",
			"organizer_id", "organizer_username", "organizer_email",
		}).AddRow(tournamentID, "Spring Cup", "Rocket League", "DUO", date, 2, created,
			organizerID, "alice", "alice@example.com"))

	rows := sqlmock.NewRows([]string{"id", "username", "email"})
	for _, p := range participants {
		rows.AddRow(p, "user-"+p[:4], p[:4]+"@example.com")
	}
	mock.ExpectQuery(`SELECT u.id, u.username, u.email`).
		WithArgs(tournamentID).
		WillReturnRows(rows)
}

func TestJoin_Success(t *testing.T) {
	svc, mock, closeDB := newService(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_participants FROM tournaments`).
		WithArgs(tournamentID).
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}).AddRow(2))
	mock.ExpectExec(`INSERT INTO tournament_participants`).
		WithArgs(tournamentID, joinerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tournament_participants`).
		WithArgs(tournamentID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()
	expectGetByID(mock, joinerID)

	tournament, err := svc.Join(context.Background(), tournamentID, joinerID)
	require.NoError(t, err)
	assert.Equal(t, 1, tournament.CurrentParticipants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoin_CapacityExceeded(t *testing.T) {
	svc, mock, closeDB := newService(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_participants FROM tournaments`).
		WithArgs(tournamentID).
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}).AddRow(2))
	mock.ExpectExec(`INSERT INTO tournament_participants`).
		WithArgs(tournamentID, joinerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Two members were already in; the third join must be rejected and rolled back.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tournament_participants`).
		WithArgs(tournamentID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	_, err := svc.Join(context.Background(), tournamentID, joinerID)
	assert.ErrorIs(t, err, ErrTournamentFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoin_AlreadyMember_NoOp(t *testing.T) {
	svc, mock, closeDB := newService(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_participants FROM tournaments`).
		WithArgs(tournamentID).
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}).AddRow(2))
	// Existing member: ON CONFLICT DO NOTHING affects zero rows.
	mock.ExpectExec(`INSERT INTO tournament_participants`).
		WithArgs(tournamentID, joinerID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// Roster already at capacity, but an existing member never exceeds it.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tournament_participants`).
		WithArgs(tournamentID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()
	expectGetByID(mock, joinerID, organizerID)

	tournament, err := svc.Join(context.Background(), tournamentID, joinerID)
	require.NoError(t, err)
	assert.Equal(t, 2, tournament.CurrentParticipants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoin_NotFound(t *testing.T) {
	svc, mock, closeDB := newService(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_participants FROM tournaments`).
		WithArgs(tournamentID).
		WillReturnRows(sqlmock.NewRows([]string{"max_participants"}))
	mock.ExpectRollback()

	_, err := svc.Join(context.Background(), tournamentID, joinerID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeave_RemovesMember(t *testing.T) {
	svc, mock, closeDB := newService(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tournaments`).
		WithArgs(tournamentID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM tournament_participants`).
		WithArgs(tournamentID, joinerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectGetByID(mock)

	tournament, err := svc.Leave(context.Background(), tournamentID, joinerID)
	require.NoError(t, err)
	assert.Equal(t, 0, tournament.CurrentParticipants)
	assert.Empty(t, tournament.Participants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeave_NonMember_NoOp(t *testing.T) {
	svc, mock, closeDB := newService(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tournaments`).
		WithArgs(tournamentID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	// Non-member: DELETE affects zero rows and is not an error.
	mock.ExpectExec(`DELETE FROM tournament_participants`).
		WithArgs(tournamentID, joinerID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectGetByID(mock, organizerID)

	tournament, err := svc.Leave(context.Background(), tournamentID, joinerID)
	require.NoError(t, err)
	assert.Equal(t, 1, tournament.CurrentParticipants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeave_NotFound(t *testing.T) {
	svc, mock, closeDB := newService(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tournaments`).
		WithArgs(tournamentID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := svc.Leave(context.Background(), tournamentID, joinerID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
