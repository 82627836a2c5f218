// Package memory is an in-process backend with the same constraints as the
// Postgres schema: unique emails, one rating per (user, store), cascading
// deletes. A single lock guards every table so multi-table operations are atomic.
package memory

import (
	"sync"

	"github.com/geocoder89/storeratings/internal/domain/rating"
	"github.com/geocoder89/storeratings/internal/domain/session"
	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/domain/user"
)

type ratingKey struct {
	userID  string
	storeID string
}

type DB struct {
	mu sync.RWMutex

	users         map[string]user.User
	stores        map[string]store.Store
	ratings       map[string]rating.Rating
	ratingsByPair map[ratingKey]string
	tokens        map[string]session.RefreshToken
}

func NewDB() *DB {
	return &DB{
		users:         make(map[string]user.User),
		stores:        make(map[string]store.Store),
		ratings:       make(map[string]rating.Rating),
		ratingsByPair: make(map[ratingKey]string),
		tokens:        make(map[string]session.RefreshToken),
	}
}

func (db *DB) Users() *UsersRepo       { return &UsersRepo{db: db} }
func (db *DB) Stores() *StoresRepo     { return &StoresRepo{db: db} }
func (db *DB) Ratings() *RatingsRepo   { return &RatingsRepo{db: db} }
func (db *DB) Sessions() *SessionsRepo { return &SessionsRepo{db: db} }
func (db *DB) Stats() *StatsRepo       { return &StatsRepo{db: db} }

// deleteRatingLocked removes one rating and its pair index. Caller holds mu.
func (db *DB) deleteRatingLocked(r rating.Rating) {
	delete(db.ratings, r.ID)
	delete(db.ratingsByPair, ratingKey{userID: r.UserID, storeID: r.StoreID})
}

func (db *DB) aggregateLocked(storeID string) rating.Aggregate {
	values := make([]int, 0)
	for _, r := range db.ratings {
		if r.StoreID == storeID {
			values = append(values, r.Value)
		}
	}
	return rating.NewAggregate(storeID, values)
}
