// Package client is a thin API client that also acts as the local state
// store: it caches the authenticated identity and the last-fetched
// tournament list, and patches the cache in place after mutations so callers
// always see the most recent successful server response.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Tournament struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Game                string    `json:"game"`
	Format              string    `json:"format"`
	Date                time.Time `json:"date"`
	MaxParticipants     int       `json:"maxParticipants"`
	CurrentParticipants int       `json:"currentParticipants"`
	Organizer           User      `json:"organizer"`
	Participants        []User    `json:"participants"`
}

// CreateInput carries the fields for a new tournament.
type CreateInput struct {
	Name            string `json:"name"`
	Game            string `json:"game"`
	Format          string `json:"format"`
	Date            string `json:"date"`
	MaxParticipants int    `json:"maxParticipants"`
}

type Client struct {
	base  string
	http  *http.Client
	token string

	user        *User
	tournaments []Tournament
	fetched     bool
}

// New creates a client for the API at base. token may be "" (anonymous) or a
// previously stored bearer token; it is not verified eagerly, so a stale
// token only surfaces as 401 on the next protected request.
func New(base, token string) *Client {
	return &Client{base: base, http: &http.Client{Timeout: 15 * time.Second}, token: token}
}

// Authenticated reports whether a token is present.
func (c *Client) Authenticated() bool { return c.token != "" }

// Token returns the current bearer token ("" when logged out).
func (c *Client) Token() string { return c.token }

// User returns the cached identity, or nil before login/register.
func (c *Client) User() *User { return c.user }

type authResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Register creates an account and replaces the cached identity and token.
func (c *Client) Register(username, email, password string) (*User, error) {
	var out authResponse
	err := c.do("POST", "/api/auth/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	c.user = &out.User
	return c.user, nil
}

// Login authenticates and replaces the cached identity and token.
func (c *Client) Login(email, password string) (*User, error) {
	var out authResponse
	err := c.do("POST", "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	c.user = &out.User
	return c.user, nil
}

// Logout clears the cached identity and token.
func (c *Client) Logout() {
	c.token = ""
	c.user = nil
}

// Tournaments returns the tournament list, fetching from the API on the
// first call or when refresh is true; otherwise the cached list is returned.
func (c *Client) Tournaments(refresh bool) ([]Tournament, error) {
	if c.fetched && !refresh {
		return c.tournaments, nil
	}
	var out []Tournament
	if err := c.do("GET", "/api/tournaments", nil, &out); err != nil {
		return nil, err
	}
	c.tournaments = out
	c.fetched = true
	return c.tournaments, nil
}

// Create creates a tournament and appends it to the cached list.
func (c *Client) Create(in CreateInput) (*Tournament, error) {
	var out Tournament
	if err := c.do("POST", "/api/tournaments", in, &out); err != nil {
		return nil, err
	}
	if c.fetched {
		c.tournaments = append(c.tournaments, out)
	}
	return &out, nil
}

// Join joins a tournament and patches the cached list entry in place.
func (c *Client) Join(tournamentID string) (*Tournament, error) {
	return c.mutate("/api/tournaments/" + tournamentID + "/join")
}

// Leave leaves a tournament and patches the cached list entry in place.
func (c *Client) Leave(tournamentID string) (*Tournament, error) {
	return c.mutate("/api/tournaments/" + tournamentID + "/leave")
}

func (c *Client) mutate(path string) (*Tournament, error) {
	var out Tournament
	if err := c.do("POST", path, nil, &out); err != nil {
		return nil, err
	}
	for i := range c.tournaments {
		if c.tournaments[i].ID == out.ID {
			c.tournaments[i] = out
			break
		}
	}
	return &out, nil
}

// apiError is the server error body shape.
type apiError struct {
	Message string `json:"message"`
}

func (c *Client) do(method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return err
		}
	}
	return nil
}
