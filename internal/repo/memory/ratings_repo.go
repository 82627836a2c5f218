package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/storeratings/internal/domain/rating"
	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/google/uuid"
)

type RatingsRepo struct {
	db *DB
}

// Upsert inserts or updates the single rating a user holds for a store.
// createdAt survives updates.
func (r *RatingsRepo) Upsert(_ context.Context, userID, storeID string, value int, comment *string) (rating.Rating, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.stores[storeID]; !ok {
		return rating.Rating{}, store.ErrNotFound
	}
	u, ok := r.db.users[userID]
	if !ok {
		return rating.Rating{}, user.ErrNotFound
	}

	now := time.Now().UTC()
	key := ratingKey{userID: userID, storeID: storeID}

	if id, ok := r.db.ratingsByPair[key]; ok {
		existing := r.db.ratings[id]
		existing.Value = value
		existing.Comment = comment
		existing.UpdatedAt = now
		r.db.ratings[id] = existing

		existing.UserName = u.Name
		return existing, nil
	}

	rt := rating.Rating{
		ID:        uuid.NewString(),
		UserID:    userID,
		StoreID:   storeID,
		Value:     value,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.db.ratings[rt.ID] = rt
	r.db.ratingsByPair[key] = rt.ID

	rt.UserName = u.Name
	return rt, nil
}

func (r *RatingsRepo) GetByID(_ context.Context, id string) (rating.Rating, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rt, ok := r.db.ratings[id]
	if !ok {
		return rating.Rating{}, rating.ErrNotFound
	}
	rt.UserName = r.db.users[rt.UserID].Name
	return rt, nil
}

func (r *RatingsRepo) GetByUserAndStore(_ context.Context, userID, storeID string) (rating.Rating, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.ratingsByPair[ratingKey{userID: userID, storeID: storeID}]
	if !ok {
		return rating.Rating{}, rating.ErrNotFound
	}
	rt := r.db.ratings[id]
	rt.UserName = r.db.users[rt.UserID].Name
	return rt, nil
}

// ListByStore returns newest first, ties broken by id descending.
func (r *RatingsRepo) ListByStore(_ context.Context, storeID string) ([]rating.Rating, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]rating.Rating, 0)
	for _, rt := range r.db.ratings {
		if rt.StoreID != storeID {
			continue
		}
		rt.UserName = r.db.users[rt.UserID].Name
		out = append(out, rt)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *RatingsRepo) Aggregate(_ context.Context, storeID string) (rating.Aggregate, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.db.aggregateLocked(storeID), nil
}

func (r *RatingsRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rt, ok := r.db.ratings[id]
	if !ok {
		return rating.ErrNotFound
	}
	r.db.deleteRatingLocked(rt)
	return nil
}
