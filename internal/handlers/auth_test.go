package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmichard/tourneyhub/internal/repo"
	"github.com/jmichard/tourneyhub/internal/token"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	h := &AuthHandler{
		UserRepo: repo.NewUserRepo(db),
		Issuer:   token.NewIssuer([]byte("test-secret"), time.Hour),
	}
	return h, mock, func() { db.Close() }
}

func TestAuthHandler_Register(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}).
			AddRow("11111111-1111-1111-1111-111111111111", "alice", "alice@example.com"))

	body, _ := json.Marshal(map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret!",
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Register status: got %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.User.Username != "alice" || out.Token == "" {
		t.Errorf("unexpected response: %+v", out)
	}

	// The token's embedded identity must resolve back to the same user id.
	userID, err := h.Issuer.Verify(out.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != out.User.ID {
		t.Errorf("token subject %q does not match user id %q", userID, out.User.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	body, _ := json.Marshal(map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret!",
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Register status: got %d, want 400", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["message"] != "user already exists" {
		t.Errorf("unexpected message: %q", out["message"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	body, _ := json.Marshal(map[string]string{
		"username": "al",
		"email":    "not-an-email",
		"password": "short",
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Register status: got %d, want 400", rr.Code)
	}
	var out struct {
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, f := range []string{"username", "email", "password"} {
		if out.Fields[f] == "" {
			t.Errorf("expected field error for %q, got %+v", f, out.Fields)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}).
			AddRow("11111111-1111-1111-1111-111111111111", "alice", "alice@example.com", string(hash)))

	body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "s3cret!"})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Login status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	userID, err := h.Issuer.Verify(out.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != out.User.ID {
		t.Errorf("token subject %q does not match user id %q", userID, out.User.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}).
			AddRow("11111111-1111-1111-1111-111111111111", "alice", "alice@example.com", string(hash)))

	body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "wrong"})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Login status: got %d, want 401", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["message"] != "invalid email or password" {
		t.Errorf("unexpected message: %q", out["message"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_UnknownEmail(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}))

	body, _ := json.Marshal(map[string]string{"email": "nobody@example.com", "password": "whatever"})
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Login status: got %d, want 401", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Login status: got %d, want 400", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
