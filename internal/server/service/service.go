// Package service содержит бизнес-логику сервиса аренды машин.
// Это прослойка между HTTP-обработчиками (api) и хранилищем данных (repository).
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/config"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
)

// Repositories - набор интерфейсов, которые сервисный слой ожидает от слоя repository.
type Repositories struct {
	Users          UsersRepo
	PasswordResets PasswordResetsRepo
	Cars           CarsRepo
	Bookings       BookingsRepo
}

// Infra - внешние зависимости, не относящиеся к базе: почта, redis, S3, PDF, метрики.
//
// Throttle и Events можно не задавать, тогда используются пустые реализации.
type Infra struct {
	Mailer   Mailer
	Throttle Throttle
	Images   ImageStore
	Reports  ReportRenderer
	Events   OTPEvents
}

// Services - агрегатор всех сервисов приложения.
type Services struct {
	Auth     *AuthService
	Password *PasswordResetService
	Cars     *CarsService
	Owner    *OwnerService
	Bookings *BookingsService
}

// NewServices собирает все сервисы приложения.
func NewServices(repos Repositories, infra Infra, cfg *config.Config) *Services {
	if infra.Throttle == nil {
		infra.Throttle = nopThrottle{}
	}
	if infra.Events == nil {
		infra.Events = nopEvents{}
	}

	return &Services{
		Auth:     NewAuthService(repos.Users, cfg),
		Password: NewPasswordResetService(repos.Users, repos.PasswordResets, infra.Mailer, infra.Throttle, infra.Events, cfg),
		Cars:     NewCarsService(repos.Cars),
		Owner:    NewOwnerService(repos.Users, repos.Cars, infra.Images),
		Bookings: NewBookingsService(repos.Users, repos.Cars, repos.Bookings, infra.Reports),
	}
}

// UsersRepo - репозиторий пользователей.
type UsersRepo interface {
	Create(ctx context.Context, name, email, passwordHash string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
}

// PasswordResetsRepo - ожидающие запросы на сброс пароля (по одному на пользователя).
type PasswordResetsRepo interface {
	Upsert(ctx context.Context, userID uuid.UUID, codeHash []byte, expiresAt time.Time) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (models.PasswordReset, error)
	// ConsumeAndSetPassword атомарно удаляет запрос с данным хэшем и меняет пароль.
	ConsumeAndSetPassword(ctx context.Context, userID uuid.UUID, codeHash []byte, passwordHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// CarsRepo - репозиторий машин.
type CarsRepo interface {
	ListAvailable(ctx context.Context) ([]models.Car, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Car, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Car, error)
	Create(ctx context.Context, c models.Car) (models.Car, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}

// BookingsRepo - репозиторий бронирований.
type BookingsRepo interface {
	Create(ctx context.Context, b models.Booking) (models.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BookingStatus) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
}

// Mailer отправляет письмо с одноразовым кодом.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
}

// Throttle ограничивает частоту действий по ключу.
//
// Allow возвращает false, если с прошлого разрешённого действия прошло меньше interval.
// Release снимает отметку, если действие так и не состоялось.
type Throttle interface {
	Allow(ctx context.Context, key string, interval time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// ImageUpload - подписанная ссылка для загрузки фото машины напрямую в хранилище.
type ImageUpload struct {
	UploadURL string    `json:"uploadUrl"`
	Key       string    `json:"key"`
	PublicURL string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ImageStore выдаёт ссылки на загрузку фото машин.
type ImageStore interface {
	PresignUpload(ctx context.Context, ownerID uuid.UUID, contentType string) (ImageUpload, error)
}

// ReportRenderer строит PDF-отчёт по бронированиям владельца.
type ReportRenderer interface {
	BookingsReport(owner models.User, bookings []models.Booking, generatedAt time.Time) ([]byte, error)
}

// OTPEvents - счётчики событий сброса пароля (issued, verified, reset, rejected).
type OTPEvents interface {
	OTPEvent(event string)
}

type nopThrottle struct{}

func (nopThrottle) Allow(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (nopThrottle) Release(context.Context, string) error                      { return nil }

type nopEvents struct{}

func (nopEvents) OTPEvent(string) {}

// passwordHasher собирает хэшер паролей из конфига.
func passwordHasher(cfg *config.Config) crypto.PasswordHasher {
	return crypto.PasswordHasher{
		Algorithm: cfg.Password.Hasher,
		Argon2: crypto.Argon2Params{
			Time:      cfg.Password.Argon2.Time,
			MemoryKiB: cfg.Password.Argon2.MemoryKiB,
			Threads:   cfg.Password.Argon2.Threads,
			KeyLen:    cfg.Password.Argon2.KeyLen,
			SaltLen:   cfg.Password.Argon2.SaltLen,
		},
		BcryptCost: cfg.Password.Bcrypt.Cost,
	}
}

// parseID разбирает идентификатор из запроса; мусор считается несуществующим id.
func parseID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
