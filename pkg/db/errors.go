package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique-constraint violation on
// either engine. When constraintOrColumn is provided, the error must also
// reference it.
func IsUniqueViolation(err error, constraintOrColumn string) bool {
	if err == nil {
		return false
	}

	matched := false

	// The gorm postgres driver rides on pgx, so its errors are *pgconn.PgError.
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		matched = pgxErr.Code == pgUniqueViolation
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		matched = string(pqErr.Code) == pgUniqueViolation
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		matched = sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	if !matched {
		// Fallback for drivers that only surface text.
		matched = strings.Contains(err.Error(), "duplicate key value") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed")
	}

	if matched && constraintOrColumn != "" {
		if pgxErr != nil && strings.Contains(pgxErr.ConstraintName, constraintOrColumn) {
			return true
		}
		return strings.Contains(err.Error(), constraintOrColumn)
	}
	return matched
}
