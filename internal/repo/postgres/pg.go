package postgres

import (
	"errors"

	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// observer wraps a logical DB op with latency/error metrics. A nil prom
// runs fn unobserved.
type observer struct {
	prom *observability.Prom
}

func (o observer) observe(op string, fn func() error) error {
	return o.prom.ObserveDB(op, fn)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return true
	}
	return false
}

// IsForeignKeyViolation reports a 23503 on the named constraint, or on any
// constraint when name is empty.
func IsForeignKeyViolation(err error, name string) bool {
	var pgErr *pgconn.PgError

	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.ForeignKeyViolation {
		return false
	}
	return name == "" || pgErr.ConstraintName == name
}
