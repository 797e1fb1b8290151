package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// sqlStateInvalidText is raised by Postgres when an id literal is not a valid uuid.
const sqlStateInvalidText = "22P02"

// noRowsOnMalformedID reports a lookup by a malformed id as a missing row.
func noRowsOnMalformedID(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlStateInvalidText {
		return pgx.ErrNoRows
	}
	return err
}
