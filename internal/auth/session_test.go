package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/kkkkikiki/crowdfund/internal/model"
)

type stubUsers map[string]model.User

func (s stubUsers) FindUserByUsername(username string) (model.User, bool) {
	u, ok := s[username]
	return u, ok
}

func TestLoginPlainCredential(t *testing.T) {
	s := NewSession(stubUsers{
		"alice": {ID: "U001", Username: "alice", DisplayName: "Alice", Credential: "alice123"},
	})

	if s.IsLoggedIn() {
		t.Fatalf("new session should be logged out")
	}
	if s.Login("alice", "wrong") {
		t.Fatalf("login with wrong password should fail")
	}
	if s.Login("bob", "alice123") {
		t.Fatalf("login with unknown user should fail")
	}
	if !s.Login("alice", "alice123") {
		t.Fatalf("login with correct password should succeed")
	}
	u, ok := s.CurrentUser()
	if !ok || u.ID != "U001" {
		t.Fatalf("unexpected current user: %#v ok=%v", u, ok)
	}
	if s.ID() == "" {
		t.Fatalf("logged-in session should have an id")
	}

	s.Logout()
	if s.IsLoggedIn() {
		t.Fatalf("session should be logged out after Logout")
	}
	if s.ID() != "" {
		t.Fatalf("logged-out session should not have an id")
	}
}

func TestFailedLoginKeepsPreviousUser(t *testing.T) {
	s := NewSession(stubUsers{
		"alice": {ID: "U001", Username: "alice", Credential: "alice123"},
		"bob":   {ID: "U002", Username: "bob", Credential: "bob123"},
	})
	if !s.Login("alice", "alice123") {
		t.Fatalf("login should succeed")
	}
	if err := s.Authenticate("bob", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	u, _ := s.CurrentUser()
	if u.ID != "U001" {
		t.Fatalf("failed login replaced user: %#v", u)
	}
}

func TestLoginBcryptCredential(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	s := NewSession(stubUsers{
		"carol": {ID: "U003", Username: "carol", Credential: string(hash)},
	})
	if s.Login("carol", string(hash)) {
		t.Fatalf("the hash itself must not be accepted as the password")
	}
	if !s.Login("carol", "s3cret") {
		t.Fatalf("bcrypt credential should verify")
	}
}

func TestNilSessionIsLoggedOut(t *testing.T) {
	var s *Session
	if s.IsLoggedIn() {
		t.Fatalf("nil session should be logged out")
	}
	if _, ok := s.CurrentUser(); ok {
		t.Fatalf("nil session should have no user")
	}
	s.Logout()
}
