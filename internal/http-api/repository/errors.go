package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
// The store-level constraint is the authoritative guard against races
// that slip past service-level pre-checks.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolationCode = "23505"

// translateError maps Postgres unique-violation errors to ErrDuplicate.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrDuplicate
	}
	return err
}
