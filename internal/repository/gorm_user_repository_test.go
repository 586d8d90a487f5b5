package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "asha/internal/errors"
	"asha/internal/model"
)

func newMockGorm(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return NewGormUserRepository(gormDB), mock
}

func lockRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"}).AddRow(model.SignupLockID)
}

func TestGormCreate_LocksBeforeCounting(t *testing.T) {
	repo, mock := newMockGorm(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `signup_locks` .* FOR UPDATE").WillReturnRows(lockRow())
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users`").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(19))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users` WHERE email = \\?").WithArgs("new@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &model.User{ID: "1", Name: "New", Email: "new@example.com", PasswordHash: "h"}, model.MaxUsers)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCreate_LimitReachedRollsBack(t *testing.T) {
	repo, mock := newMockGorm(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(lockRow())
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users`").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(model.MaxUsers))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.User{ID: "2", Email: "late@example.com"}, model.MaxUsers)
	assert.ErrorIs(t, err, apperrors.ErrUserLimitReached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newMockGorm(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(lockRow())
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users`").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("WHERE email = \\?").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.User{ID: "3", Email: "dup@example.com"}, model.MaxUsers)
	assert.ErrorIs(t, err, apperrors.ErrEmailRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}
