package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/domain/user"
)

type StoresRepo struct {
	db *DB
}

func (r *StoresRepo) Create(_ context.Context, s store.Store) (store.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[s.OwnerID]; !ok {
		return store.Store{}, user.ErrNotFound
	}
	if r.emailTakenLocked(s.Email, "") {
		return store.Store{}, store.ErrEmailTaken
	}

	r.db.stores[s.ID] = s
	return s, nil
}

func (r *StoresRepo) GetByID(_ context.Context, id string) (store.Store, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	s, ok := r.db.stores[id]
	if !ok {
		return store.Store{}, store.ErrNotFound
	}
	return s, nil
}

func (r *StoresRepo) GetWithStats(_ context.Context, id string) (store.WithStats, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	s, ok := r.db.stores[id]
	if !ok {
		return store.WithStats{}, store.ErrNotFound
	}
	return r.annotateLocked(s), nil
}

func (r *StoresRepo) Update(_ context.Context, id string, patch store.Patch) (store.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.stores[id]
	if !ok {
		return store.Store{}, store.ErrNotFound
	}

	next := patch.Apply(s)
	if next.Email != s.Email && r.emailTakenLocked(next.Email, id) {
		return store.Store{}, store.ErrEmailTaken
	}
	next.UpdatedAt = time.Now().UTC()

	r.db.stores[id] = next
	return next, nil
}

// DeleteWithRatings removes the store and every rating of it under one lock.
func (r *StoresRepo) DeleteWithRatings(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.stores[id]; !ok {
		return store.ErrNotFound
	}
	for _, rt := range r.db.ratings {
		if rt.StoreID == id {
			r.db.deleteRatingLocked(rt)
		}
	}
	delete(r.db.stores, id)
	return nil
}

func (r *StoresRepo) List(_ context.Context, filter store.ListFilter) ([]store.WithStats, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]store.WithStats, 0)
	for _, s := range r.db.stores {
		if !matches(s, filter) {
			continue
		}
		out = append(out, r.annotateLocked(s))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a == b {
			return out[i].ID < out[j].ID
		}
		return a < b
	})
	return out, nil
}

func (r *StoresRepo) annotateLocked(s store.Store) store.WithStats {
	agg := r.db.aggregateLocked(s.ID)
	return store.WithStats{
		Store:         s,
		OwnerName:     r.db.users[s.OwnerID].Name,
		AverageRating: agg.Average,
		TotalRatings:  agg.Count,
	}
}

func (r *StoresRepo) emailTakenLocked(email, exceptID string) bool {
	for id, s := range r.db.stores {
		if id != exceptID && s.Email == email {
			return true
		}
	}
	return false
}

func matches(s store.Store, f store.ListFilter) bool {
	if f.OwnerID != nil && s.OwnerID != *f.OwnerID {
		return false
	}
	return containsFold(s.Name, f.Name) && containsFold(s.Email, f.Email) && containsFold(s.Address, f.Address)
}

func containsFold(field string, needle *string) bool {
	if needle == nil {
		return true
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(strings.TrimSpace(*needle)))
}
