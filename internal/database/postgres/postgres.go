// Package postgres implements the user and link stores over sqlx.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolationErrCode is the SQLSTATE class for unique constraint
// violations, raised on duplicate emails and back halves.
const uniqueViolationErrCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}
