// Package session persists the signed-in user's access token to the filesystem.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smileynet/pokedex/internal/api"
)

// ErrNoSession indicates there is no usable session: none saved, or the
// saved token has expired.
var ErrNoSession = errors.New("session: not logged in")

// Session is what a successful login or registration leaves behind.
type Session struct {
	Token   string    `json:"token"`
	User    api.User  `json:"user"`
	SavedAt time.Time `json:"saved_at"`
}

// ExpiresAt returns the token's exp claim. The signature is not verified;
// the backend does that. ok is false when the token carries no expiry.
func (s Session) ExpiresAt() (t time.Time, ok bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether the token's expiry lies before now.
// Tokens without a readable expiry never expire client-side.
func (s Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}

// FileStore persists a Session as a JSON file.
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFileStore creates a FileStore that saves the session at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the session, stamping SavedAt. The file is readable only by
// the owner since it holds a bearer token.
func (s *FileStore) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: creating directory: %w", err)
	}

	sess.SavedAt = s.now().UTC().Truncate(time.Second)
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshaling: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("session: writing %s: %w", s.path, err)
	}
	return nil
}

// Load reads the saved session. It returns ErrNoSession when no file
// exists, the token is empty, or the token has expired.
func (s *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("session: reading %s: %w", s.path, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("session: parsing %s: %w", s.path, err)
	}
	if sess.Token == "" {
		return Session{}, ErrNoSession
	}
	if sess.Expired(s.now()) {
		return Session{}, fmt.Errorf("%w: token expired", ErrNoSession)
	}
	return sess, nil
}

// Clear deletes the session file. A missing file is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: removing %s: %w", s.path, err)
	}
	return nil
}
