package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/repository"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

func TestPasswordResetsRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewPasswordResetsRepository(db)
	userID := uuid.New()
	hash := crypto.HashOTP("482913")
	exp := time.Now().Add(10 * time.Minute)

	mock.ExpectExec(`INSERT INTO password_resets (.+) ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs(userID, hash, exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), userID, hash, exp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetsRepository_Upsert_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewPasswordResetsRepository(db)

	mock.ExpectExec(`INSERT INTO password_resets`).
		WillReturnError(sql.ErrConnDone)

	err = repo.Upsert(context.Background(), uuid.New(), []byte("h"), time.Now())
	require.ErrorIs(t, err, serr.ErrInternal)
}

func TestPasswordResetsRepository_GetByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewPasswordResetsRepository(db)
	userID := uuid.New()
	hash := crypto.HashOTP("482913")
	exp := time.Date(2026, 1, 1, 12, 10, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM password_resets`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "code_hash", "expires_at", "created_at"}).
			AddRow(userID.String(), hash, exp, exp.Add(-10*time.Minute)))

	pr, err := repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, userID, pr.UserID)
	require.Equal(t, hash, pr.CodeHash)
	require.True(t, exp.Equal(pr.ExpiresAt))
}

// запроса нет - это не "not found", а отсутствие ожидающего сброса
func TestPasswordResetsRepository_GetByUserID_NoPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewPasswordResetsRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM password_resets`).
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByUserID(context.Background(), userID)
	require.ErrorIs(t, err, serr.ErrNoPendingRequest)
}

func TestPasswordResetsRepository_ConsumeAndSetPassword_OK(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewPasswordResetsRepository(db)
	userID := uuid.New()
	hash := crypto.HashOTP("482913")

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM password_resets`).
		WithArgs(userID, hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(userID.String()))
	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs(userID, "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ConsumeAndSetPassword(context.Background(), userID, hash, "new-hash"))
	require.NoError(t, mock.ExpectationsWereMet())
}

// код уже использован параллельным запросом - пароль не трогаем
func TestPasswordResetsRepository_ConsumeAndSetPassword_AlreadyConsumed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewPasswordResetsRepository(db)
	userID := uuid.New()
	hash := crypto.HashOTP("482913")

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM password_resets`).
		WithArgs(userID, hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	err = repo.ConsumeAndSetPassword(context.Background(), userID, hash, "new-hash")
	require.ErrorIs(t, err, serr.ErrNoPendingRequest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetsRepository_ConsumeAndSetPassword_UpdateFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewPasswordResetsRepository(db)
	userID := uuid.New()
	hash := crypto.HashOTP("482913")

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM password_resets`).
		WithArgs(userID, hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(userID.String()))
	mock.ExpectExec(`UPDATE users SET password_hash`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err = repo.ConsumeAndSetPassword(context.Background(), userID, hash, "new-hash")
	require.ErrorIs(t, err, serr.ErrInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetsRepository_DeleteExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewPasswordResetsRepository(db)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM password_resets WHERE expires_at < \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
