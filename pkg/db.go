package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes, https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PgErrorCode returns the SQLSTATE of a (wrapped) postgres error, or "".
func PgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolationError reports a duplicate key, e.g. a taken username.
func IsUniqueViolationError(err error) bool {
	return PgErrorCode(err) == pgUniqueViolation
}

// IsForeignKeyViolationError reports a reference to a missing row, e.g. a
// comment on a blog deleted in the meantime.
func IsForeignKeyViolationError(err error) bool {
	return PgErrorCode(err) == pgForeignKeyViolation
}
