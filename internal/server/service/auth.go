package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/config"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
)

// AuthService реализует регистрацию, вход и получение профиля.
//
// В ответ на регистрацию и вход выдаётся один access-токен (JWT),
// subject которого - id пользователя.
type AuthService struct {
	users UsersRepo

	hasher    crypto.PasswordHasher
	jwt       crypto.JWTConfig
	minLength int
}

// NewAuthService создаёт AuthService с зависимостями и настройками из конфига.
func NewAuthService(users UsersRepo, cfg *config.Config) *AuthService {
	return &AuthService{
		users:  users,
		hasher: passwordHasher(cfg),
		jwt: crypto.JWTConfig{
			Issuer:     cfg.Auth.Issuer,
			Audience:   cfg.Auth.Audience,
			SigningKey: cfg.Auth.JWT.SigningKey,
			AccessTTL:  cfg.Auth.AccessTTL,
		},
		minLength: cfg.Password.MinLength,
	}
}

// normalizeEmail - email храним и ищем в нижнем регистре.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashError - слишком длинный для bcrypt пароль это ошибка клиента, остальное внутренняя.
func hashError(err error) error {
	if errors.Is(err, crypto.ErrPasswordTooLong) {
		return serr.Wrap(serr.ErrInvalidInput, "Password must be at most 72 bytes", err)
	}
	return serr.Wrap(serr.ErrInternal, "", err)
}

// Register регистрирует нового пользователя и сразу выдаёт токен.
//
// Ошибки:
//   - ErrInvalidInput - пустое поле или короткий пароль
//   - ErrAlreadyExists - email уже зарегистрирован
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" || email == "" || password == "" || utf8.RuneCountInString(password) < s.minLength {
		return "", serr.New(serr.ErrInvalidInput, "Fill all the fields")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", hashError(err)
	}

	u, err := s.users.Create(ctx, name, email, hash)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return "", serr.New(serr.ErrAlreadyExists, "User already exists")
		}
		return "", err
	}

	return s.issue(u.ID)
}

// Login проверяет пароль и выдаёт токен.
//
// Ошибки:
//   - ErrInvalidInput - пустой email или пароль
//   - ErrNotFound - пользователя нет
//   - ErrInvalidCredentials - пароль не подошёл
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", serr.New(serr.ErrInvalidInput, "Email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return "", serr.New(serr.ErrNotFound, "User not found")
		}
		return "", err
	}

	ok, err := crypto.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return "", serr.Wrap(serr.ErrInternal, "", err)
	}
	if !ok {
		return "", serr.New(serr.ErrInvalidCredentials, "Invalid Credentials")
	}

	return s.issue(u.ID)
}

// GetUser возвращает профиль пользователя по id из токена.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return models.User{}, serr.New(serr.ErrUnauthorized, "Not authorized")
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *AuthService) issue(userID uuid.UUID) (string, error) {
	token, err := crypto.NewAccessToken(userID.String(), s.jwt)
	if err != nil {
		return "", serr.Wrap(serr.ErrInternal, "", err)
	}
	return token, nil
}
