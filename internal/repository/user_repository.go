package repository

import (
	"fmt"

	"github.com/kkkkikiki/crowdfund/internal/database"
	"github.com/kkkkikiki/crowdfund/internal/model"
)

// UpsertUser inserts u, or replaces the user with the same ID, then rewrites the users file
func (r *Repository) UpsertUser(u model.User) error {
	if u.ID == "" {
		return fmt.Errorf("failed to upsert user: %w", ErrInvalidKey)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.users[u.ID]
	r.users[u.ID] = u
	if !existed {
		r.userOrder = append(r.userOrder, u.ID)
	}

	if err := r.saveUsers(); err != nil {
		if existed {
			r.users[u.ID] = prev
		} else {
			delete(r.users, u.ID)
			r.userOrder = r.userOrder[:len(r.userOrder)-1]
		}
		return fmt.Errorf("failed to upsert user %s: %w", u.ID, err)
	}
	return nil
}

// FindUserByUsername returns the first user, in insertion order, with the given username
func (r *Repository) FindUserByUsername(username string) (model.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.userOrder {
		if u := r.users[id]; u.Username == username {
			return u, true
		}
	}
	return model.User{}, false
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(id string) (model.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	return u, ok
}

func (r *Repository) loadUser(row database.Row, fr *FileReport) {
	u := decodeUser(fieldDecoder{row: row, fr: fr})
	if u.ID == "" {
		fr.Skipped++
		fr.notice(fmt.Sprintf("line %d: user without id", row.Line))
		return
	}
	if _, ok := r.users[u.ID]; !ok {
		r.userOrder = append(r.userOrder, u.ID)
	}
	r.users[u.ID] = u
}
