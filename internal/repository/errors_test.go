package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNoRowsOnMalformedID(t *testing.T) {
	invalidUUID := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
	other := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	boom := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"invalid uuid", invalidUUID, pgx.ErrNoRows},
		{"wrapped invalid uuid", fmt.Errorf("scan ticket: %w", invalidUUID), pgx.ErrNoRows},
		{"other sql state", other, other},
		{"plain error", boom, boom},
		{"no rows", pgx.ErrNoRows, pgx.ErrNoRows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, noRowsOnMalformedID(tt.err), tt.want)
		})
	}
}
