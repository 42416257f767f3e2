package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordReset - ожидающий запрос на сброс пароля.
//
// Хранится отдельно от пользователя: у пользователя максимум один такой запрос,
// код лежит только в виде sha256. Запись удаляется при успешном сбросе.
type PasswordReset struct {
	UserID    uuid.UUID
	CodeHash  []byte
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired - истёк ли код к моменту now (ровно в момент истечения код ещё действует).
func (p PasswordReset) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
