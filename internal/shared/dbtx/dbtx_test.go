package dbtx_test

import (
	"errors"
	"fmt"
	"testing"

	"go-leave/internal/shared/dbtx"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_public_holidays_date_name"}

	assert.True(t, dbtx.IsUniqueViolation(pgErr, ""))
	assert.True(t, dbtx.IsUniqueViolation(fmt.Errorf("create: %w", pgErr), "uq_public_holidays_date_name"))
	assert.False(t, dbtx.IsUniqueViolation(pgErr, "uq_users_email"))
	assert.True(t, dbtx.IsUniqueViolation(errors.New("UNIQUE constraint failed: public_holidays.date, public_holidays.name"), ""))
	assert.False(t, dbtx.IsUniqueViolation(errors.New("timeout"), ""))
	assert.False(t, dbtx.IsUniqueViolation(nil, ""))
}

func TestIsUniqueViolationSQLiteMessage(t *testing.T) {
	holidayDup := errors.New("UNIQUE constraint failed: public_holidays.date, public_holidays.name")
	emailDup := errors.New("UNIQUE constraint failed: users.email")

	assert.True(t, dbtx.IsUniqueViolation(holidayDup, "uq_public_holidays_date_name"))
	assert.True(t, dbtx.IsUniqueViolation(emailDup, "uq_users_email"))
	assert.False(t, dbtx.IsUniqueViolation(holidayDup, "uq_users_email"))
	assert.False(t, dbtx.IsUniqueViolation(emailDup, "uq_public_holidays_date_name"))
	assert.False(t, dbtx.IsUniqueViolation(holidayDup, "uq_unknown"))
	assert.True(t, dbtx.IsUniqueViolation(
		errors.New(`duplicate key value violates unique constraint "uq_users_email"`), "uq_users_email"))
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, dbtx.IsSerializationFailure(&pgconn.PgError{Code: "40001"}))
	assert.True(t, dbtx.IsSerializationFailure(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40P01"})))
	assert.False(t, dbtx.IsSerializationFailure(&pgconn.PgError{Code: "23505"}))
	assert.False(t, dbtx.IsSerializationFailure(errors.New("boom")))
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, dbtx.IsCheckViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, dbtx.IsCheckViolation(errors.New("boom")))
}

func TestBind(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)

	t.Run("nil tx keeps the pool", func(t *testing.T) {
		assert.Same(t, gdb, dbtx.Bind(gdb, nil))
	})

	t.Run("statements run on the tx and the parent is untouched", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := sqlDB.Begin()
		assert.NoError(t, err)

		bound := dbtx.Bind(gdb, tx)
		assert.NotSame(t, gdb.Statement, bound.Statement)
		assert.Equal(t, tx, bound.Statement.ConnPool)

		res := bound.Exec("UPDATE users SET leave_balance = leave_balance + 1")
		assert.NoError(t, res.Error)
		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
