// Package dbtx lets gorm repositories join a transaction that a service opened
// on the underlying *sql.DB.
package dbtx

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation       = "23505"
	pgSerializationFailure  = "40001"
	pgDeadlockDetected      = "40P01"
	pgCheckConstraintFailed = "23514"
)

// uniqueColumns maps the unique indexes in db/migrations to the column list
// sqlite prints for them.
var uniqueColumns = map[string]string{
	"uq_users_email":               "users.email",
	"uq_public_holidays_date_name": "public_holidays.date, public_holidays.name",
}

// Bind returns a gorm handle whose statements run on tx. A nil tx returns db
// unchanged.
func Bind(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}
	// WithContext clones the statement, so the parent handle keeps its pool.
	bound := db.WithContext(context.Background())
	bound.Statement.ConnPool = tx
	return bound
}

// IsUniqueViolation reports a unique constraint failure. An empty constraint
// matches any unique constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key value") {
		return constraint == "" || strings.Contains(msg, constraint)
	}
	if !strings.Contains(msg, "unique constraint failed") {
		return false
	}
	if constraint == "" {
		return true
	}
	// sqlite names the indexed columns, never the index.
	columns, ok := uniqueColumns[constraint]
	return ok && strings.Contains(msg, "failed: "+columns)
}

// IsSerializationFailure reports errors that mean a concurrent transaction won.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCheckConstraintFailed
}
