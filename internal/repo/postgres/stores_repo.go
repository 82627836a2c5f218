package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoresRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewStoresRepo(pool *pgxpool.Pool, prom *observability.Prom) *StoresRepo {
	return &StoresRepo{observer: observer{prom: prom}, pool: pool}
}

// averages and counts are derived on every read, never stored
const storeWithStatsSelect = `
	SELECT s.id, s.name, s.email, s.address, s.owner_id, s.created_at, s.updated_at,
	       u.name,
	       AVG(r.rating)::float8,
	       COUNT(r.id)
	FROM stores s
	JOIN users u ON u.id = s.owner_id
	LEFT JOIN ratings r ON r.store_id = s.id
`

const storeWithStatsGroupBy = ` GROUP BY s.id, u.name`

func scanStoreWithStats(row pgx.Row) (store.WithStats, error) {
	var s store.WithStats

	err := row.Scan(
		&s.ID, &s.Name, &s.Email, &s.Address, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt,
		&s.OwnerName,
		&s.AverageRating,
		&s.TotalRatings,
	)
	return s, err
}

func (r *StoresRepo) Create(ctx context.Context, s store.Store) (store.Store, error) {
	err := r.observe("stores.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO stores (id, name, email, address, owner_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			s.ID, s.Name, s.Email, s.Address, s.OwnerID, s.CreatedAt, s.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return store.Store{}, store.ErrEmailTaken
		}
		if IsForeignKeyViolation(err, "stores_owner_id_fkey") {
			return store.Store{}, user.ErrNotFound
		}
		return store.Store{}, err
	}
	return s, nil
}

func (r *StoresRepo) GetByID(ctx context.Context, id string) (store.Store, error) {
	var s store.Store

	err := r.observe("stores.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, email, address, owner_id, created_at, updated_at FROM stores WHERE id = $1`, id,
		).Scan(&s.ID, &s.Name, &s.Email, &s.Address, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Store{}, store.ErrNotFound
		}
		return store.Store{}, err
	}
	return s, nil
}

func (r *StoresRepo) GetWithStats(ctx context.Context, id string) (s store.WithStats, err error) {
	err = r.observe("stores.get_with_stats", func() error {
		s, err = scanStoreWithStats(r.pool.QueryRow(ctx,
			storeWithStatsSelect+` WHERE s.id = $1`+storeWithStatsGroupBy, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.WithStats{}, store.ErrNotFound
		}
		return store.WithStats{}, err
	}
	return s, nil
}

func (r *StoresRepo) Update(ctx context.Context, id string, patch store.Patch) (store.Store, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return store.Store{}, err
	}

	next := patch.Apply(current)
	next.UpdatedAt = time.Now().UTC()

	var rows int64
	err = r.observe("stores.update", func() error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE stores
			SET name = $2, email = $3, address = $4, updated_at = $5
			WHERE id = $1
		`, id, next.Name, next.Email, next.Address, next.UpdatedAt)
		rows = tag.RowsAffected()
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return store.Store{}, store.ErrEmailTaken
		}
		return store.Store{}, err
	}
	if rows == 0 {
		return store.Store{}, store.ErrNotFound
	}
	return next, nil
}

// DeleteWithRatings removes the store and its ratings in one transaction.
// The FK cascades as well; deleting ratings first keeps the behaviour
// explicit for schemas migrated without it.
func (r *StoresRepo) DeleteWithRatings(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var locked string
	err = r.observe("stores.delete.lock", func() error {
		return tx.QueryRow(ctx, `SELECT id FROM stores WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}

	err = r.observe("stores.delete.ratings", func() error {
		_, err := tx.Exec(ctx, `DELETE FROM ratings WHERE store_id = $1`, id)
		return err
	})
	if err != nil {
		return err
	}

	err = r.observe("stores.delete.store", func() error {
		_, err := tx.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *StoresRepo) List(ctx context.Context, filter store.ListFilter) ([]store.WithStats, error) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	like := func(column string, v *string) {
		if v == nil || strings.TrimSpace(*v) == "" {
			return
		}
		conds = append(conds, fmt.Sprintf("%s ILIKE $%d", column, argsPosition))
		args = append(args, "%"+escapeLike(strings.TrimSpace(*v))+"%")
		argsPosition++
	}

	like("s.name", filter.Name)
	like("s.email", filter.Email)
	like("s.address", filter.Address)

	if filter.OwnerID != nil {
		conds = append(conds, fmt.Sprintf("s.owner_id = $%d", argsPosition))
		args = append(args, *filter.OwnerID)
		argsPosition++
	}

	query := storeWithStatsSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += storeWithStatsGroupBy + ` ORDER BY LOWER(s.name) ASC, s.id ASC`

	out := make([]store.WithStats, 0)

	err := r.observe("stores.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			s, err := scanStoreWithStats(rows)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
