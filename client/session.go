// Package client holds the CLI side of eventhub: a file-backed session that
// mirrors what the web client keeps in browser storage, and an HTTP wrapper
// around the API that attaches the session token to protected calls.
package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventhub/models"
	"eventhub/utils"
)

var ErrNotLoggedIn = errors.New("not logged in")

// sessionState is what gets persisted: the raw token plus a display copy of
// the user decoded from it. The copy is convenience only; authorization is
// always the server re-verifying the token.
type sessionState struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Session answers "who is logged in" purely from the persisted token, no
// server round-trip. An absent, expired or garbled token means logged out.
type Session struct {
	path  string
	state *sessionState
}

// OpenSession loads the session from the default per-user location.
func OpenSession() (*Session, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return OpenSessionAt(filepath.Join(dir, "eventctl", "session.json"))
}

// OpenSessionAt loads the session from an explicit path. A stale or invalid
// persisted token is discarded, never surfaced as an error.
func OpenSessionAt(path string) (*Session, error) {
	s := &Session{path: path}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var state sessionState
	if err := json.Unmarshal(b, &state); err != nil {
		s.clear()
		return s, nil
	}
	user, ok := decodeForDisplay(state.Token)
	if !ok {
		s.clear()
		return s, nil
	}
	state.User = user
	s.state = &state
	return s, nil
}

// decodeForDisplay parses the token without verifying the signature (the
// client has no secret) but does refuse an expired one.
func decodeForDisplay(token string) (models.User, bool) {
	claims := &utils.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return models.User{}, false
	}
	if claims.UserID == 0 || claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return models.User{}, false
	}
	return models.User{ID: claims.UserID, Name: claims.Name, Email: claims.Email}, true
}

// Login persists the token and recomputes the session state from it.
func (s *Session) Login(token string) error {
	user, ok := decodeForDisplay(token)
	if !ok {
		return errors.New("received an invalid or expired token")
	}

	state := sessionState{Token: token, User: user}
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return err
	}
	s.state = &state
	return nil
}

// Logout clears the persisted token. Tokens are stateless, so this is the
// whole story: the server keeps no session record to revoke.
func (s *Session) Logout() {
	s.clear()
}

func (s *Session) clear() {
	_ = os.Remove(s.path)
	s.state = nil
}

func (s *Session) IsAuthenticated() bool { return s.state != nil }

func (s *Session) Token() string {
	if s.state == nil {
		return ""
	}
	return s.state.Token
}

func (s *Session) CurrentUser() (models.User, bool) {
	if s.state == nil {
		return models.User{}, false
	}
	return s.state.User, true
}
