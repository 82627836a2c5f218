package memory

import (
	"context"

	"github.com/geocoder89/storeratings/internal/domain/stats"
	"github.com/geocoder89/storeratings/internal/domain/user"
)

type StatsRepo struct {
	db *DB
}

func (r *StatsRepo) Dashboard(_ context.Context) (stats.Dashboard, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	d := stats.Dashboard{
		TotalUsers:   len(r.db.users),
		TotalStores:  len(r.db.stores),
		TotalRatings: len(r.db.ratings),
	}
	for _, u := range r.db.users {
		if u.Role == user.RoleStoreOwner {
			d.StoreOwners++
		}
	}

	var sum float64
	rated := 0
	for id := range r.db.stores {
		agg := r.db.aggregateLocked(id)
		if agg.Average == nil {
			continue
		}
		sum += *agg.Average
		rated++
	}
	if rated > 0 {
		avg := sum / float64(rated)
		d.AverageRating = &avg
	}
	return d, nil
}
