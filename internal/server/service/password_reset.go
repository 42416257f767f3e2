package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/config"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

// События сброса пароля для метрик.
const (
	OTPIssued   = "issued"
	OTPVerified = "verified"
	OTPReset    = "reset"
	OTPRejected = "rejected"
)

// OTPTTL - срок жизни кода сброса с момента выпуска.
const OTPTTL = 600 * time.Second

// PasswordResetService - сброс забытого пароля по одноразовому коду из письма.
//
// Сценарий из трёх шагов:
//  1. RequestReset выпускает код, сохраняет его хэш со сроком жизни и отправляет письмо;
//  2. VerifyOTP только проверяет код, ничего не меняя;
//  3. ResetPassword повторяет проверку целиком, затем в одной транзакции
//     гасит код и записывает новый пароль.
//
// Код одноразовый: после успешного сброса повторная попытка с тем же кодом
// получает "No OTP request found".
type PasswordResetService struct {
	users    UsersRepo
	resets   PasswordResetsRepo
	mailer   Mailer
	throttle Throttle
	events   OTPEvents

	hasher         crypto.PasswordHasher
	resendInterval time.Duration
	minLength      int

	now     func() time.Time
	newCode func() (string, error)
}

// NewPasswordResetService создаёт сервис сброса пароля.
func NewPasswordResetService(
	users UsersRepo,
	resets PasswordResetsRepo,
	mailer Mailer,
	throttle Throttle,
	events OTPEvents,
	cfg *config.Config,
) *PasswordResetService {
	if throttle == nil {
		throttle = nopThrottle{}
	}
	if events == nil {
		events = nopEvents{}
	}
	return &PasswordResetService{
		users:          users,
		resets:         resets,
		mailer:         mailer,
		throttle:       throttle,
		events:         events,
		hasher:         passwordHasher(cfg),
		resendInterval: cfg.OTP.ResendInterval,
		minLength:      cfg.Password.MinLength,
		now:            time.Now,
		newCode:        crypto.NewOTP,
	}
}

// WithClock подменяет источник времени (для тестов).
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	s.now = now
	return s
}

// WithCodeGenerator подменяет генератор кодов (для тестов).
func (s *PasswordResetService) WithCodeGenerator(gen func() (string, error)) *PasswordResetService {
	s.newCode = gen
	return s
}

// RequestReset выпускает новый код и отправляет его на email.
//
// Предыдущий код пользователя, если был, перестаёт действовать.
// Если письмо не ушло, возвращается ErrTransport, но сохранённый код остаётся рабочим.
//
// Ошибки:
//   - ErrInvalidInput - пустой email
//   - ErrTooManyRequests - код на этот email запрашивали слишком недавно
//   - ErrNotFound - пользователя нет
//   - ErrTransport - почтовый сервер не принял письмо
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return serr.New(serr.ErrInvalidInput, "Email is required")
	}

	held := false
	if s.resendInterval > 0 {
		allowed, err := s.throttle.Allow(ctx, email, s.resendInterval)
		// redis недоступен - не блокируем сброс пароля
		if err == nil && !allowed {
			return serr.New(serr.ErrTooManyRequests, "Please wait before requesting another OTP")
		}
		held = err == nil
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return serr.New(serr.ErrNotFound, "User not found")
		}
		return err
	}

	code, err := s.newCode()
	if err != nil {
		return serr.Wrap(serr.ErrInternal, "", err)
	}

	expiresAt := s.now().Add(OTPTTL)
	if err := s.resets.Upsert(ctx, u.ID, crypto.HashOTP(code), expiresAt); err != nil {
		return err
	}
	s.events.OTPEvent(OTPIssued)

	if err := s.mailer.SendOTP(ctx, u.Email, code, OTPTTL); err != nil {
		// письмо не ушло - повторный запрос не должен упираться в интервал
		if held {
			_ = s.throttle.Release(ctx, email)
		}
		return serr.Wrap(serr.ErrTransport, "Failed to send OTP email", err)
	}
	return nil
}

// VerifyOTP проверяет код без изменения состояния.
//
// Порядок проверок: пользователь, наличие запроса, срок, совпадение кода.
func (s *PasswordResetService) VerifyOTP(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return serr.New(serr.ErrInvalidInput, "Email and OTP are required")
	}

	if _, _, err := s.check(ctx, email, code); err != nil {
		return err
	}
	s.events.OTPEvent(OTPVerified)
	return nil
}

// ResetPassword меняет пароль, если код действителен, и гасит код.
//
// Предыдущий VerifyOTP не учитывается: вся цепочка проверок выполняется заново.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return serr.New(serr.ErrInvalidInput, "All fields are required")
	}
	if utf8.RuneCountInString(newPassword) < s.minLength {
		return serr.New(serr.ErrInvalidInput, fmt.Sprintf("Password must be at least %d characters", s.minLength))
	}

	u, pr, err := s.check(ctx, email, code)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return hashError(err)
	}

	if err := s.resets.ConsumeAndSetPassword(ctx, u.ID, pr.CodeHash, hash); err != nil {
		if errors.Is(err, serr.ErrNoPendingRequest) {
			s.events.OTPEvent(OTPRejected)
			return serr.New(serr.ErrNoPendingRequest, "No OTP request found")
		}
		return err
	}
	s.events.OTPEvent(OTPReset)
	return nil
}

// PurgeExpired удаляет просроченные коды. Вызывается периодически из cmd/server.
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.resets.DeleteExpired(ctx, s.now())
}

// check - общая цепочка проверок для VerifyOTP и ResetPassword.
func (s *PasswordResetService) check(ctx context.Context, email, code string) (models.User, models.PasswordReset, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return models.User{}, models.PasswordReset{}, serr.New(serr.ErrNotFound, "User not found")
		}
		return models.User{}, models.PasswordReset{}, err
	}

	pr, err := s.resets.GetByUserID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, serr.ErrNoPendingRequest) {
			s.events.OTPEvent(OTPRejected)
			return models.User{}, models.PasswordReset{}, serr.New(serr.ErrNoPendingRequest, "No OTP request found")
		}
		return models.User{}, models.PasswordReset{}, err
	}

	if pr.Expired(s.now()) {
		s.events.OTPEvent(OTPRejected)
		return models.User{}, models.PasswordReset{}, serr.New(serr.ErrOTPExpired, "OTP has expired")
	}

	if !crypto.EqualOTP(code, pr.CodeHash) {
		s.events.OTPEvent(OTPRejected)
		return models.User{}, models.PasswordReset{}, serr.New(serr.ErrOTPMismatch, "Invalid OTP")
	}

	return u, pr, nil
}
