// Package auth resolves backer credentials into an explicit Session that is
// handed to every pledge request.
package auth

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kkkkikiki/crowdfund/internal/model"
)

// ErrInvalidCredentials is returned when the username or password does not match
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserFinder looks users up by username
type UserFinder interface {
	FindUserByUsername(username string) (model.User, bool)
}

// Session holds at most one logged-in user. The zero value is logged out.
type Session struct {
	users UserFinder
	id    string
	user  *model.User
}

// NewSession creates a logged-out session that authenticates against users
func NewSession(users UserFinder) *Session {
	return &Session{users: users}
}

// Login replaces the current user when username and password match a stored
// user. On failure the session keeps its previous state.
func (s *Session) Login(username, password string) bool {
	return s.Authenticate(username, password) == nil
}

// Authenticate is Login with the failure reason
func (s *Session) Authenticate(username, password string) error {
	if s.users == nil {
		return ErrInvalidCredentials
	}
	u, ok := s.users.FindUserByUsername(username)
	if !ok || !credentialMatches(u.Credential, password) {
		return ErrInvalidCredentials
	}
	s.user = &u
	s.id = uuid.NewString()
	return nil
}

// Logout clears the current user
func (s *Session) Logout() {
	if s == nil {
		return
	}
	s.user = nil
	s.id = ""
}

// IsLoggedIn reports whether a user is logged in. A nil session is logged out.
func (s *Session) IsLoggedIn() bool {
	return s != nil && s.user != nil
}

// CurrentUser returns the logged-in user
func (s *Session) CurrentUser() (model.User, bool) {
	if !s.IsLoggedIn() {
		return model.User{}, false
	}
	return *s.user, true
}

// ID identifies the current login; empty when logged out
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// credentialMatches compares stored against password. Stored credentials are
// plain text unless they carry a bcrypt prefix.
func credentialMatches(stored, password string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return stored == password
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
