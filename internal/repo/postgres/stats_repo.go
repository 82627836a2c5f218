package postgres

import (
	"context"

	"github.com/geocoder89/storeratings/internal/domain/stats"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool, prom *observability.Prom) *StatsRepo {
	return &StatsRepo{observer: observer{prom: prom}, pool: pool}
}

// Dashboard reads every figure in one statement so they share a snapshot.
func (r *StatsRepo) Dashboard(ctx context.Context) (stats.Dashboard, error) {
	var d stats.Dashboard

	err := r.observe("stats.dashboard", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT
				(SELECT COUNT(*) FROM users),
				(SELECT COUNT(*) FROM users WHERE role = 'store_owner'),
				(SELECT COUNT(*) FROM stores),
				(SELECT COUNT(*) FROM ratings),
				(SELECT AVG(per_store.avg)::float8
				   FROM (SELECT AVG(rating) AS avg FROM ratings GROUP BY store_id) per_store)
		`).Scan(&d.TotalUsers, &d.StoreOwners, &d.TotalStores, &d.TotalRatings, &d.AverageRating)
	})

	if err != nil {
		return stats.Dashboard{}, err
	}
	return d, nil
}
