// Package session owns the client's authenticated session: the bearer
// token and the current user profile. It is the single writer of that
// state; every other component reads it through accessors.
//
// The in-memory session and the state file are kept in lockstep: a
// mutating operation persists first and updates memory only when the
// write succeeds, so the two can never diverge, even on error. Token
// and user are always stored and cleared together.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/atinyakov/taskdeck/internal/api"
	"github.com/atinyakov/taskdeck/internal/models"
	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned by operations that require a session
// when none is present.
var ErrNotAuthenticated = errors.New("not authenticated")

// persisted is the on-disk session shape.
type persisted struct {
	AuthToken   string              `json:"authToken"`
	CurrentUser *models.UserProfile `json:"currentUser"`
}

// Store holds the session and synchronizes it with the state file.
type Store struct {
	api  *api.Client
	path string
	log  *zap.Logger

	token string
	user  *models.UserProfile
}

// New constructs a Store persisting to path. No state is loaded until
// Restore is called.
func New(apiClient *api.Client, path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{api: apiClient, path: path, log: log}
}

// Restore loads the persisted session, if any. It returns true when
// both token and user were present; the caller should then Verify the
// session against the server before trusting it. A partial or
// unreadable state file is cleared and treated as absent.
func (s *Store) Restore() bool {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}

	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil || p.AuthToken == "" || p.CurrentUser == nil {
		s.log.Debug("discarding unusable session state", zap.String("path", s.path))
		s.Logout()
		return false
	}

	s.token = p.AuthToken
	s.user = p.CurrentUser
	s.api.SetToken(p.AuthToken)
	return true
}

// Verify checks the restored token against the identity endpoint and
// refreshes the profile with the server-authoritative copy. On any
// rejection or network failure the session is cleared, in memory and
// on disk, and the error is returned.
func (s *Store) Verify(ctx context.Context) error {
	if s.token == "" {
		return ErrNotAuthenticated
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Debug("session verification failed", zap.Error(err))
		s.Logout()
		return err
	}

	if err := s.save(s.token, user); err != nil {
		s.Logout()
		return err
	}
	s.user = user
	return nil
}

// Login submits credentials and, on success, persists and installs the
// new session. On rejection the server's message is returned unmodified
// and neither memory nor disk is touched.
func (s *Store) Login(ctx context.Context, username, password string) (*models.UserProfile, error) {
	res, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := s.save(res.AccessToken, &res.User); err != nil {
		return nil, err
	}

	s.token = res.AccessToken
	user := res.User
	s.user = &user
	s.api.SetToken(res.AccessToken)
	return s.user, nil
}

// Logout clears the session unconditionally: memory, API client token,
// and the state file. It never fails; a missing state file is fine.
func (s *Store) Logout() {
	s.token = ""
	s.user = nil
	s.api.ClearToken()
	_ = os.Remove(s.path)
}

// UpdateProfile submits the editable profile fields and merges the
// returned profile into the session. On error nothing changes.
func (s *Store) UpdateProfile(ctx context.Context, displayName, email string) (*models.UserProfile, error) {
	if s.token == "" {
		return nil, ErrNotAuthenticated
	}

	user, err := s.api.UpdateProfile(ctx, displayName, email)
	if err != nil {
		return nil, err
	}

	if err := s.save(s.token, user); err != nil {
		return nil, err
	}
	s.user = user
	return s.Current(), nil
}

// ChangePassword rotates the password. The session itself is unchanged:
// the token stays valid.
func (s *Store) ChangePassword(ctx context.Context, current, updated string) error {
	if s.token == "" {
		return ErrNotAuthenticated
	}
	return s.api.ChangePassword(ctx, current, updated)
}

// Current returns a copy of the session's user profile, or nil when
// not authenticated.
func (s *Store) Current() *models.UserProfile {
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Authenticated reports whether a session is present.
func (s *Store) Authenticated() bool {
	return s.token != "" && s.user != nil
}

// IsAdmin reports whether the session's role carries admin rights.
func (s *Store) IsAdmin() bool {
	return s.user != nil && s.user.Role.IsAdmin()
}

// save writes the state file atomically: token and user always land
// together or not at all.
func (s *Store) save(token string, user *models.UserProfile) error {
	raw, err := json.Marshal(persisted{AuthToken: token, CurrentUser: user})
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
