// Package models - серверные модели аренды.
//
// JSON-теги повторяют контракт веб-клиента: идентификатор отдаётся как "_id",
// поля в camelCase.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователя.
const (
	RoleUser  = "user"
	RoleOwner = "owner"
)

type User struct {
	ID           uuid.UUID `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Image        string    `json:"image"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsOwner - может ли пользователь выставлять машины и управлять бронированиями.
func (u User) IsOwner() bool { return u.Role == RoleOwner }
