package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/google/uuid"
)

type UsersRepo struct {
	db *DB
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = u.CreatedAt

	r.db.users[u.ID] = u
	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) UpdateProfile(_ context.Context, id string, patch user.ProfilePatch) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Address != nil {
		u.Address = *patch.Address
	}
	u.UpdatedAt = time.Now().UTC()

	r.db.users[id] = u
	return u, nil
}

func (r *UsersRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	r.db.users[id] = u
	return nil
}

func (r *UsersRepo) List(_ context.Context, filter user.ListFilter) ([]user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]user.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a user with their ratings and sessions. Users owning stores
// are kept, mirroring the RESTRICT foreign key.
func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return user.ErrNotFound
	}
	for _, s := range r.db.stores {
		if s.OwnerID == id {
			return user.ErrOwnsStores
		}
	}

	for _, rt := range r.db.ratings {
		if rt.UserID == id {
			r.db.deleteRatingLocked(rt)
		}
	}
	for tokenID, t := range r.db.tokens {
		if t.UserID == id {
			delete(r.db.tokens, tokenID)
		}
	}
	delete(r.db.users, id)
	return nil
}
