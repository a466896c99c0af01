package repository

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockUserRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewUserRepository(db), mock
}

func TestMarkNotificationRead_IssuesScopedUpdate(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications" SET "read"=$1 WHERE id = $2 AND user_id = $3`)).
		WithArgs(true, uint64(5), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkNotificationRead(5, 9))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkNotificationRead_NoRowIsNotFound(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications" SET "read"=$1 WHERE id = $2 AND user_id = $3`)).
		WithArgs(true, uint64(404), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.MarkNotificationRead(404, 9)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByIDs(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE id IN ($1,$2,$3)`)).
		WithArgs(uint64(1), uint64(2), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountByIDs([]uint64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
	require.NoError(t, mock.ExpectationsWereMet())
}
