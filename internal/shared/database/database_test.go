package database_test

import (
	"context"
	"errors"
	"testing"

	"go-fleetpay/internal/shared/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)
	return db, mock
}

func TestWithTransaction(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := database.WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and returns fn error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := database.WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = database.WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
				panic("boom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

		called := false
		err := database.WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
			called = true
			return nil
		})

		assert.Error(t, err)
		assert.False(t, called)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_rate_route_vehicle"}

	assert.True(t, database.IsUniqueViolation(pgErr, ""))
	assert.True(t, database.IsUniqueViolation(pgErr, "uq_rate_route_vehicle"))
	assert.False(t, database.IsUniqueViolation(pgErr, "uq_other"))
	assert.True(t, database.IsUniqueViolation(gorm.ErrDuplicatedKey, ""))
	assert.True(t, database.IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email"), ""))
	assert.False(t, database.IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, database.IsUniqueViolation(nil, ""))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, database.IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, database.IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, database.IsForeignKeyViolation(nil))
}
