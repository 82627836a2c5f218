package memory

import (
	"context"
	"time"

	"github.com/geocoder89/storeratings/internal/domain/session"
)

type SessionsRepo struct {
	db *DB
}

func (r *SessionsRepo) Create(_ context.Context, row session.RefreshToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.tokens[row.ID] = row
	return nil
}

func (r *SessionsRepo) Rotate(_ context.Context, oldID, presentedHash string, next session.RefreshToken, now time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	old, ok := r.db.tokens[oldID]
	if !ok {
		return session.ErrNotFound
	}
	if err := old.CheckRotatable(presentedHash, now); err != nil {
		return err
	}
	if old.UserID != next.UserID {
		return session.ErrMismatch
	}

	revokedAt := now
	replacedBy := next.ID
	old.RevokedAt = &revokedAt
	old.ReplacedBy = &replacedBy

	r.db.tokens[oldID] = old
	r.db.tokens[next.ID] = next
	return nil
}

func (r *SessionsRepo) Revoke(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.tokens[id]
	if !ok || t.RevokedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	t.RevokedAt = &now
	r.db.tokens[id] = t
	return nil
}

func (r *SessionsRepo) RevokeAllForUser(_ context.Context, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now().UTC()
	for id, t := range r.db.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			r.db.tokens[id] = t
		}
	}
	return nil
}
