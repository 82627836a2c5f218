package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/storeratings/internal/domain/rating"
	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RatingsRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewRatingsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RatingsRepo {
	return &RatingsRepo{observer: observer{prom: prom}, pool: pool}
}

const ratingSelect = `
	SELECT r.id, r.user_id, r.store_id, r.rating, r.comment, u.name, r.created_at, r.updated_at
	FROM ratings r
	JOIN users u ON u.id = r.user_id
`

func scanRating(row pgx.Row) (rating.Rating, error) {
	var rt rating.Rating

	err := row.Scan(
		&rt.ID,
		&rt.UserID,
		&rt.StoreID,
		&rt.Value,
		&rt.Comment,
		&rt.UserName,
		&rt.CreatedAt,
		&rt.UpdatedAt,
	)
	return rt, err
}

// Upsert is a single statement so concurrent submissions for the same
// (user, store) pair collapse onto one row. created_at is only written on insert.
func (r *RatingsRepo) Upsert(ctx context.Context, userID, storeID string, value int, comment *string) (rt rating.Rating, err error) {
	now := time.Now().UTC()

	err = r.observe("ratings.upsert", func() error {
		rt, err = scanRating(r.pool.QueryRow(ctx, `
			WITH up AS (
				INSERT INTO ratings (id, user_id, store_id, rating, comment, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $6)
				ON CONFLICT (user_id, store_id) DO UPDATE
				SET rating = EXCLUDED.rating,
				    comment = EXCLUDED.comment,
				    updated_at = EXCLUDED.updated_at
				RETURNING id, user_id, store_id, rating, comment, created_at, updated_at
			)
			SELECT up.id, up.user_id, up.store_id, up.rating, up.comment, u.name, up.created_at, up.updated_at
			FROM up
			JOIN users u ON u.id = up.user_id
		`, uuid.NewString(), userID, storeID, value, comment, now))
		return err
	})

	if err != nil {
		switch {
		case IsForeignKeyViolation(err, "ratings_store_id_fkey"):
			return rating.Rating{}, store.ErrNotFound
		case IsForeignKeyViolation(err, "ratings_user_id_fkey"):
			return rating.Rating{}, user.ErrNotFound
		}
		return rating.Rating{}, err
	}
	return rt, nil
}

func (r *RatingsRepo) GetByID(ctx context.Context, id string) (rt rating.Rating, err error) {
	err = r.observe("ratings.get_by_id", func() error {
		rt, err = scanRating(r.pool.QueryRow(ctx, ratingSelect+` WHERE r.id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rating.Rating{}, rating.ErrNotFound
		}
		return rating.Rating{}, err
	}
	return rt, nil
}

func (r *RatingsRepo) GetByUserAndStore(ctx context.Context, userID, storeID string) (rt rating.Rating, err error) {
	err = r.observe("ratings.get_by_user_and_store", func() error {
		rt, err = scanRating(r.pool.QueryRow(ctx,
			ratingSelect+` WHERE r.user_id = $1 AND r.store_id = $2`, userID, storeID))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rating.Rating{}, rating.ErrNotFound
		}
		return rating.Rating{}, err
	}
	return rt, nil
}

func (r *RatingsRepo) ListByStore(ctx context.Context, storeID string) ([]rating.Rating, error) {
	out := make([]rating.Rating, 0)

	err := r.observe("ratings.list_by_store", func() error {
		rows, err := r.pool.Query(ctx,
			ratingSelect+` WHERE r.store_id = $1 ORDER BY r.created_at DESC, r.id DESC`, storeID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rt, err := scanRating(rows)
			if err != nil {
				return err
			}
			out = append(out, rt)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RatingsRepo) Aggregate(ctx context.Context, storeID string) (rating.Aggregate, error) {
	agg := rating.Aggregate{StoreID: storeID}

	err := r.observe("ratings.aggregate", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT AVG(rating)::float8, COUNT(*) FROM ratings WHERE store_id = $1`, storeID,
		).Scan(&agg.Average, &agg.Count)
	})

	if err != nil {
		return rating.Aggregate{}, err
	}
	return agg, nil
}

func (r *RatingsRepo) Delete(ctx context.Context, id string) error {
	var rows int64

	err := r.observe("ratings.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id)
		rows = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}
	if rows == 0 {
		return rating.ErrNotFound
	}
	return nil
}
