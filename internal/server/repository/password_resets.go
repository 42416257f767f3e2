package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

// PasswordResetsRepository хранит ожидающие запросы на сброс пароля.
//
// На пользователя не больше одной записи (PRIMARY KEY user_id).
// Сам код в базу не попадает, только его sha256.
type PasswordResetsRepository struct {
	db *sql.DB
}

func NewPasswordResetsRepository(db *sql.DB) *PasswordResetsRepository {
	return &PasswordResetsRepository{db: db}
}

// Upsert сохраняет новый код пользователя, заменяя предыдущий, если он был.
func (r *PasswordResetsRepository) Upsert(ctx context.Context, userID uuid.UUID, codeHash []byte, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_resets (user_id, code_hash, expires_at)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (user_id) DO UPDATE
		    SET code_hash = EXCLUDED.code_hash,
		        expires_at = EXCLUDED.expires_at,
		        created_at = now()`,
		userID, codeHash, expiresAt,
	)
	if err != nil {
		return serr.ErrInternal
	}
	return nil
}

// GetByUserID возвращает ожидающий запрос пользователя.
//
// Ошибки:
//   - ErrNoPendingRequest - запроса нет (не запрашивался или уже использован)
//   - ErrInternal - ошибка базы данных
func (r *PasswordResetsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (models.PasswordReset, error) {
	var pr models.PasswordReset
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, code_hash, expires_at, created_at
		   FROM password_resets
		  WHERE user_id=$1`,
		userID,
	).Scan(&pr.UserID, &pr.CodeHash, &pr.ExpiresAt, &pr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PasswordReset{}, serr.ErrNoPendingRequest
		}
		return models.PasswordReset{}, serr.ErrInternal
	}
	return pr, nil
}

// ConsumeAndSetPassword в одной транзакции удаляет запрос на сброс
// и записывает новый хэш пароля.
//
// Удаляется только запись с тем же codeHash, который был проверен:
// если код успели использовать или перевыпустить, возвращается ErrNoPendingRequest
// и пароль не меняется.
func (r *PasswordResetsRepository) ConsumeAndSetPassword(ctx context.Context, userID uuid.UUID, codeHash []byte, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return serr.ErrInternal
	}
	defer tx.Rollback() //nolint:errcheck

	var consumed uuid.UUID
	err = tx.QueryRowContext(ctx,
		`DELETE FROM password_resets
		  WHERE user_id=$1 AND code_hash=$2
		 RETURNING user_id`,
		userID, codeHash,
	).Scan(&consumed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return serr.ErrNoPendingRequest
		}
		return serr.ErrInternal
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash=$2 WHERE id=$1`,
		userID, passwordHash,
	)
	if err != nil {
		return serr.ErrInternal
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return serr.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return serr.ErrInternal
	}
	return nil
}

// DeleteExpired удаляет запросы, срок которых истёк к моменту now.
// Возвращает число удалённых записей.
func (r *PasswordResetsRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM password_resets WHERE expires_at < $1`,
		now,
	)
	if err != nil {
		return 0, serr.ErrInternal
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, serr.ErrInternal
	}
	return n, nil
}
