// Package postgres implements the store interfaces using a PostgreSQL
// database accessed through database/sql with the pgx stdlib driver.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes.
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
)

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation, such as a duplicate email or category name.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}

// isForeignKeyViolation checks if the given error is a PostgreSQL foreign
// key violation, such as a task referencing a missing user or category.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode
}
